package export_test

import (
	"bytes"
	"encoding/xml"
	"errors"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindflow/diagram"
	"mindflow/export"
	"mindflow/geometry"
	"mindflow/theme"
)

func flowchart() *diagram.Diagram {
	return &diagram.Diagram{
		Title:  "Release <1.0>",
		Canvas: diagram.Canvas{Width: 600, Height: 500},
		Nodes: []diagram.Node{
			{ID: "a", Title: "Plan (Q1)", Icon: "idea", Description: "scope & risks", Position: geometry.Pt(50, 50), Size: geometry.Sz(200, 86)},
			{ID: "b", Title: "Ship", Kind: diagram.NodeTerminal, Position: geometry.Pt(50, 300), Size: geometry.Sz(200, 86)},
		},
		Connectors: []diagram.Connector{
			{ID: "c1", From: "a", To: "b", Style: &diagram.StyleOverride{Dash: []float64{6, 4}}},
			{ID: "c2", From: "b", To: "ghost"},
		},
		SideBoxes: []diagram.SideBox{
			{ID: "s1", Text: "owner", AttachedNodeID: "a", Size: geometry.Sz(120, 40), LineStyle: diagram.LineDotted},
		},
		Panel: &diagram.SupportingPanel{
			Title:    "Tools",
			Position: geometry.Pt(400, 40),
			Size:     geometry.Sz(180, 200),
			Items:    []diagram.PanelItem{{ID: "p1", Title: "CI", Height: 56, ConnectsToNodeID: "a"}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected export.Format
		wantErr  bool
	}{
		{"json", export.FormatJSON, false},
		{"mermaid", export.FormatMermaid, false},
		{"mmd", export.FormatMermaid, false},
		{"svg", export.FormatSVG, false},
		{"png", export.FormatPNG, false},
		{"ascii", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := export.ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewExporter(t *testing.T) {
	for _, format := range export.GetAvailableFormats() {
		t.Run(string(format), func(t *testing.T) {
			exporter, err := export.NewExporter(format, export.DefaultOptions())
			require.NoError(t, err)
			assert.NotEmpty(t, exporter.GetFileExtension())
			assert.NotEmpty(t, exporter.GetFormatName())
			assert.Contains(t, export.GetFormatDescriptions(), format)
		})
	}

	_, err := export.NewExporter("ascii", export.DefaultOptions())
	assert.True(t, errors.Is(err, export.ErrUnsupportedFormat))
}

func TestJSONExportRoundTrips(t *testing.T) {
	data, err := export.NewJSONExporter().Export(flowchart())
	require.NoError(t, err)

	back, err := diagram.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "Release <1.0>", back.Title)
	assert.Len(t, back.Nodes, 2)
}

func TestMermaidFlowchart(t *testing.T) {
	out, err := export.NewMermaidExporter().Export(flowchart())
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasPrefix(text, "flowchart TD\n"))
	assert.Contains(t, text, "    N1[Plan Q1]\n")
	assert.Contains(t, text, "    N2([Ship])\n")
	assert.Contains(t, text, "    N1 -.-> N2\n")
	assert.NotContains(t, text, "ghost")
}

func TestMermaidMindMapWithCycle(t *testing.T) {
	d := &diagram.Diagram{
		Canvas: diagram.Canvas{Width: 400, Height: 400},
		Mode:   diagram.ModeMindMap,
		Nodes: []diagram.Node{
			{ID: "r", Title: "Root", Position: geometry.Pt(150, 150), Size: geometry.Sz(100, 100)},
			{ID: "a", Title: "A"},
			{ID: "b", Title: "B"},
		},
		Connectors: []diagram.Connector{
			{ID: "c1", From: "r", To: "a"},
			{ID: "c2", From: "a", To: "b"},
			{ID: "c3", From: "b", To: "r"},
		},
	}

	out, err := export.NewMermaidExporter().Export(d)
	require.NoError(t, err)

	want := "mindmap\n  root((Root))\n    A\n      B\n"
	assert.Equal(t, want, string(out))
}

func TestMermaidRejectsEmpty(t *testing.T) {
	_, err := export.NewMermaidExporter().Export(&diagram.Diagram{})
	assert.Error(t, err)
}

func TestSVGExport(t *testing.T) {
	out, err := export.NewSVGExporter(export.DefaultOptions()).Export(flowchart())
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, `width="600"`)
	assert.Contains(t, text, `height="500"`)
	assert.Contains(t, text, "stroke-dasharray:6,4")
	assert.Contains(t, text, "<polygon")
	assert.Contains(t, text, "Release &lt;1.0&gt;")

	// The document must be well-formed XML.
	dec := xml.NewDecoder(bytes.NewReader(out))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
}

func TestPNGExport(t *testing.T) {
	bg := theme.Dark.Background
	opts := export.Options{Theme: theme.Dark, Background: &bg, Scale: 2}

	out, err := export.NewPNGExporter(opts).Export(flowchart())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 1000, img.Bounds().Dy())

	r, g, b, _ := img.At(1, 1).RGBA()
	wr, wg, wb, _ := bg.RGBA()
	assert.Equal(t, []uint32{wr >> 8, wg >> 8, wb >> 8}, []uint32{r >> 8, g >> 8, b >> 8})
}
