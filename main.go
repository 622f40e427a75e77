package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mindflow/autosize"
	"mindflow/config"
	"mindflow/connections"
	"mindflow/diagram"
	"mindflow/editor"
	"mindflow/export"
	"mindflow/generate"
	"mindflow/importer"
	"mindflow/layout"
	"mindflow/markdown"
	"mindflow/render"
	"mindflow/theme"
	"mindflow/validation"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what every command needs once flags are parsed.
type app struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "mindflow",
		Short: "Mindflow - flowcharts and mind maps in the terminal",
		Long: `Mindflow edits flowcharts and mind maps stored as JSON documents.
It lays diagrams out, sizes nodes to fit their text, routes connectors and
exports to JSON, Mermaid, SVG and PNG. Diagrams can also be generated from
a topic with an OpenAI-compatible API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./"+config.FileName+" or ~/.mindflow.yaml)")

	root.AddCommand(a.newViewCommand())
	root.AddCommand(a.newExportCommand())
	root.AddCommand(a.newLayoutCommand())
	root.AddCommand(a.newImportCommand())
	root.AddCommand(a.newValidateCommand())
	root.AddCommand(a.newGenerateCommand())
	return root
}

func (a *app) setup(stderr io.Writer) error {
	if err := config.LoadEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// sizer measures with the Go Regular face at the export font size, falling
// back to cell estimates when the font cannot be loaded.
func (a *app) sizer() *autosize.Sizer {
	m, err := autosize.NewFontMeasurer(a.cfg.Export.FontSize*0.8, 0)
	if err != nil {
		a.logger.Warn("font unavailable, estimating text size", "error", err)
		return autosize.NewSizer(autosize.CellMeasurer{CellWidth: 8, CellHeight: 16}, a.cfg.Sizing)
	}
	return autosize.NewSizer(m, a.cfg.Sizing)
}

func (a *app) sceneOptions() render.Options {
	return render.Options{
		Router: connections.NewRouter(a.cfg.Routing),
		Sizing: a.cfg.Sizing,
	}
}

func (a *app) editor(d *diagram.Diagram, gen generate.Generator) *editor.Editor {
	opts := editor.Options{
		Sizer:        a.sizer(),
		Layout:       a.cfg.Layout,
		HistoryLimit: a.cfg.History.Limit,
		Generator:    gen,
		Logger:       a.logger,
	}
	return editor.New(d, opts)
}

func readDiagram(path string) (*diagram.Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	d, err := diagram.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (a *app) newExportCommand() *cobra.Command {
	var (
		format    string
		output    string
		toClip    bool
		themeName string
		scale     float64
		mdFile    string
		block     int
	)
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export a diagram to JSON, Mermaid, SVG or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			opts, err := a.exportOptions(themeName, scale)
			if err != nil {
				return err
			}
			exp, err := export.NewExporter(f, opts)
			if err != nil {
				return err
			}

			d, err := readDiagram(args[0])
			if err != nil {
				return err
			}
			d, _ = a.sizer().Apply(d)

			data, err := exp.Export(d)
			if err != nil {
				return err
			}

			if mdFile != "" {
				if f != export.FormatMermaid {
					return errors.New("only mermaid output can be written into markdown")
				}
				return replaceMarkdownBlock(mdFile, block, string(data))
			}
			if toClip {
				if f == export.FormatPNG {
					return errors.New("PNG output cannot be copied to the clipboard")
				}
				if err := clipboard.WriteAll(string(data)); err != nil {
					return fmt.Errorf("clipboard: %w", err)
				}
				a.logger.Info("copied to clipboard", "format", exp.GetFormatName())
				return nil
			}
			if output == "" && f == export.FormatPNG {
				output = strings.TrimSuffix(args[0], ".json") + exp.GetFileExtension()
			}
			return writeOutput(cmd, output, data)
		},
	}

	var names []string
	for _, f := range export.GetAvailableFormats() {
		names = append(names, string(f))
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatSVG), "output format: "+strings.Join(names, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&toClip, "clipboard", false, "copy text output to the clipboard")
	cmd.Flags().StringVar(&themeName, "theme", "", "theme: "+strings.Join(theme.Names(), ", "))
	cmd.Flags().Float64Var(&scale, "scale", 0, "PNG scale factor")
	cmd.Flags().StringVar(&mdFile, "markdown", "", "replace a mermaid block in this markdown file")
	cmd.Flags().IntVar(&block, "block", 1, "which mermaid block to replace (1-based)")
	return cmd
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func replaceMarkdownBlock(path string, n int, content string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	s := markdown.NewScanner(string(data))
	b, err := s.Block(n)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	out, err := s.Replace(b, content)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return os.WriteFile(path, []byte(out), 0o644)
}

func (a *app) exportOptions(themeName string, scale float64) (export.Options, error) {
	if themeName == "" {
		themeName = a.cfg.Export.Theme
	}
	th, ok := theme.ByName(themeName)
	if !ok {
		return export.Options{}, fmt.Errorf("unknown theme %q", themeName)
	}
	if scale <= 0 {
		scale = a.cfg.Export.Scale
	}
	opts := export.Options{
		Theme:    th,
		FontSize: a.cfg.Export.FontSize,
		Scale:    scale,
		Scene:    a.sceneOptions(),
		Logger:   a.logger,
	}
	if a.cfg.Export.Background != "" {
		bg, err := theme.ParseColor(a.cfg.Export.Background)
		if err != nil {
			return export.Options{}, err
		}
		opts.Background = &bg
	}
	return opts, nil
}

func (a *app) newLayoutCommand() *cobra.Command {
	var (
		algorithm string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "layout FILE",
		Short: "Re-position every node with a layout algorithm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDiagram(args[0])
			if err != nil {
				return err
			}
			ed := a.editor(d, nil)
			if err := ed.ApplyLayout(algorithm); err != nil {
				return err
			}
			data, err := diagram.Encode(ed.Committed())
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", layout.AlgorithmTree, "layout: "+strings.Join(layout.Names(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) newImportCommand() *cobra.Command {
	var (
		format    string
		algorithm string
		output    string
		block     int
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Convert a Mermaid flowchart or mind map into a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			if isMarkdown(args[0]) {
				b, err := markdown.NewScanner(string(content)).Block(block)
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				content = []byte(b.Content)
			}

			registry := importer.NewRegistry()
			var d *diagram.Diagram
			if format != "" {
				d, err = registry.ImportWithFormat(string(content), format)
			} else {
				d, err = registry.Import(string(content))
			}
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			if algorithm == "" {
				algorithm = layout.AlgorithmTree
				if d.IsMindMap() {
					algorithm = layout.AlgorithmRadial
				}
			}
			ed := a.editor(d, nil)
			if err := ed.ApplyLayout(algorithm); err != nil {
				return err
			}
			a.logger.Debug("imported", "file", args[0], "nodes", len(d.Nodes), "layout", algorithm)

			data, err := diagram.Encode(ed.Committed())
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (auto-detect if not specified)")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "layout (default tree, radial for mind maps)")
	cmd.Flags().IntVar(&block, "block", 1, "which mermaid block of a markdown file to import (1-based)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) newValidateCommand() *cobra.Command {
	var (
		strict   bool
		overlaps bool
	)
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Report dangling references and other problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDiagram(args[0])
			if err != nil {
				return err
			}

			v := validation.NewValidator()
			v.SetStrictMode(strict)
			v.SetCheckOverlaps(overlaps)
			problems := v.Validate(d)

			out := cmd.OutOrStdout()
			errorf := color.New(color.FgRed, color.Bold).SprintFunc()
			warnf := color.New(color.FgYellow).SprintFunc()
			okf := color.New(color.FgGreen).SprintFunc()

			if len(problems) == 0 {
				fmt.Fprintf(out, "%s %s\n", okf("✓"), args[0])
				return nil
			}
			for _, p := range problems {
				label := warnf(p.Severity.String())
				if p.Severity == validation.Error {
					label = errorf(p.Severity.String())
				}
				fmt.Fprintf(out, "%s %s [%s]: %s\n", label, p.Path, p.Context, p.Message)
			}
			if validation.HasErrors(problems) {
				return fmt.Errorf("%s has errors", args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	cmd.Flags().BoolVar(&overlaps, "overlaps", true, "report overlapping nodes")
	return cmd
}

func (a *app) newGenerateCommand() *cobra.Command {
	var (
		mode   string
		detail string
		nodes  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "generate TOPIC",
		Short: "Generate a diagram about a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.generateRequest(strings.Join(args, " "), mode, detail, nodes)
			if err != nil {
				return err
			}
			gen, err := generate.NewOpenAI(a.cfg.Generate.OpenAIConfig, a.logger)
			if err != nil {
				return errors.New(generate.UserMessage(err))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Generate.Timeout)
			defer cancel()

			ed := a.editor(nil, gen)
			if err := ed.Generate(ctx, req); err != nil {
				a.logger.Error("generation failed", "topic", req.Topic, "error", err)
				return errors.New(generate.UserMessage(err))
			}

			data, err := diagram.Encode(ed.Committed())
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(diagram.ModeFlowchart), "flowchart or mindmap")
	cmd.Flags().StringVarP(&detail, "detail", "d", "", "detail level (default from config)")
	cmd.Flags().IntVarP(&nodes, "nodes", "n", 0, "target node count (0 lets the model decide)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) generateRequest(topic, mode, detail string, nodes int) (generate.Request, error) {
	if strings.TrimSpace(topic) == "" {
		return generate.Request{}, errors.New("topic is empty")
	}
	m := diagram.LayoutMode(mode)
	if m != diagram.ModeFlowchart && m != diagram.ModeMindMap {
		return generate.Request{}, fmt.Errorf("unknown mode %q", mode)
	}
	if detail == "" {
		detail = a.cfg.Generate.Detail
	}
	lvl, err := generate.ParseDetail(detail)
	if err != nil {
		return generate.Request{}, err
	}
	if nodes < 0 {
		return generate.Request{}, fmt.Errorf("node count must not be negative")
	}
	return generate.Request{Topic: topic, Detail: lvl, Mode: m, TargetNodes: nodes}, nil
}
