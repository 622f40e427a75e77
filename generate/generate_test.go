package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindflow/diagram"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleResponse = "```json\n" + `{
  "title": "Coffee",
  "nodes": [
    {"id": "n1", "kind": "terminal", "title": "Start"},
    {"id": "n2", "title": "Grind beans", "icon": "settings"}
  ],
  "connectors": [{"id": "c1", "fromNodeId": "n1", "toNodeId": "n2"}]
}` + "\n```"

func TestParseDiagram(t *testing.T) {
	d, err := ParseDiagram(sampleResponse, diagram.ModeMindMap)
	require.NoError(t, err)

	assert.Equal(t, "Coffee", d.Title)
	assert.Equal(t, diagram.ModeMindMap, d.Mode)
	assert.Equal(t, DefaultCanvas, d.Canvas)
	assert.Equal(t, DefaultNodeSize, d.Nodes[1].Size)
	assert.Equal(t, diagram.NodeTerminal, d.Nodes[0].Kind)
}

func TestParseDiagramMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "Sure! Here is your diagram."},
		{"no nodes", `{"title": "empty"}`},
		{"duplicate ids", `{"nodes": [{"id": "a"}, {"id": "a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDiagram(tt.content, "")
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestParseChildren(t *testing.T) {
	children, err := ParseChildren(`{"children": [{"title": "A"}, {"title": "  "}, {"title": "B", "icon": "mail"}]}`)
	require.NoError(t, err)
	assert.Equal(t, []Child{{Title: "A"}, {Title: "B", Icon: "mail"}}, children)

	_, err = ParseChildren(`{"children": []}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Contains(t, UserMessage(fmt.Errorf("%w: 503", ErrTransient)), "try again in a moment")
	assert.Contains(t, UserMessage(fmt.Errorf("%w: bad", ErrMalformedResponse)), "could not be read")
	assert.Contains(t, UserMessage(ErrAPIKeyMissing), "OPENAI_API_KEY")
	assert.Contains(t, UserMessage(errors.New("boom")), "not changed")
}

func TestClassify(t *testing.T) {
	assert.ErrorIs(t, classify(&openai.APIError{HTTPStatusCode: 429}), ErrTransient)
	assert.ErrorIs(t, classify(&openai.APIError{HTTPStatusCode: 502}), ErrTransient)
	assert.NotErrorIs(t, classify(&openai.APIError{HTTPStatusCode: 400}), ErrTransient)
	assert.ErrorIs(t, classify(context.DeadlineExceeded), ErrTransient)
	assert.ErrorIs(t, classify(context.Canceled), context.Canceled)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	originalKey, keyExisted := os.LookupEnv("OPENAI_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")
	defer func() {
		if keyExisted {
			os.Setenv("OPENAI_API_KEY", originalKey)
		}
	}()

	g, err := NewOpenAI(OpenAIConfig{}, quietLogger())
	assert.Nil(t, g)
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error": {"message": "slow down", "type": "rate_limit"}}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-1",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestOpenAIGenerateDiagram(t *testing.T) {
	srv := chatServer(t, http.StatusOK, sampleResponse)
	defer srv.Close()

	g, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", Model: "test-model", BaseURL: srv.URL}, quietLogger())
	require.NoError(t, err)

	d, err := g.GenerateDiagram(context.Background(), Request{Topic: "coffee", Mode: diagram.ModeFlowchart})
	require.NoError(t, err)
	assert.Len(t, d.Nodes, 2)
	assert.Equal(t, diagram.ModeFlowchart, d.Mode)
}

func TestOpenAIRateLimited(t *testing.T) {
	srv := chatServer(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	g, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL}, quietLogger())
	require.NoError(t, err)

	_, err = g.GenerateDiagram(context.Background(), Request{Topic: "coffee"})
	assert.ErrorIs(t, err, ErrTransient)
}

func TestOpenAIExpandNode(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"children": [{"title": "A"}, {"title": "B"}, {"title": "C"}]}`)
	defer srv.Close()

	g, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL}, quietLogger())
	require.NoError(t, err)

	children, err := g.ExpandNode(context.Background(), ExpandRequest{Topic: "t", Parent: "p", Count: 2})
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

func TestPrompts(t *testing.T) {
	p := diagramPrompt(Request{Topic: "tea", Detail: DetailBrief, Mode: diagram.ModeMindMap, TargetNodes: 7})
	assert.Contains(t, p, "mind map about: tea")
	assert.Contains(t, p, "about 7 nodes")
	assert.Contains(t, p, "Titles only")

	p = expandPrompt(ExpandRequest{Topic: "tea", Parent: "Brewing", Count: 3})
	assert.Contains(t, p, `"Brewing"`)
	assert.Contains(t, p, "Suggest 3 child nodes")
}

func TestParseDetail(t *testing.T) {
	d, err := ParseDetail("")
	require.NoError(t, err)
	assert.Equal(t, DetailStandard, d)

	_, err = ParseDetail("verbose")
	assert.Error(t, err)
}

func TestMock(t *testing.T) {
	m := &Mock{Diagram: &diagram.Diagram{Title: "x"}}
	d, err := m.GenerateDiagram(context.Background(), Request{Topic: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", d.Title)
	assert.Len(t, m.Requests, 1)
}
