package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"mindflow/autosize"
	"mindflow/config"
	"mindflow/diagram"
	"mindflow/drag"
	"mindflow/editor"
	"mindflow/generate"
	"mindflow/terminal"
	"mindflow/theme"
)

const (
	cellWidth  = 8
	cellHeight = 16
)

func (a *app) newViewCommand() *cobra.Command {
	var (
		watch     bool
		logFile   string
		themeName string
	)
	cmd := &cobra.Command{
		Use:   "view [FILE]",
		Short: "Open a diagram in the interactive terminal editor",
		Long: `Open a diagram in the terminal. Drag nodes with the mouse, drag the
bottom-right corner to resize, drag empty space to pan and scroll to zoom.
A missing FILE starts an empty diagram that 's' saves to FILE.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			if themeName == "" {
				themeName = theme.Dark.Name
			}
			th, ok := theme.ByName(themeName)
			if !ok {
				return fmt.Errorf("unknown theme %q", themeName)
			}

			// The screen owns the terminal, so logs go to a file or nowhere.
			logOut := io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}
			logger, err := config.NewLogger(a.cfg.Log, logOut)
			if err != nil {
				return err
			}
			a.logger = logger

			return a.runInteractive(cmd.Context(), path, watch, th)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the file changes on disk")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	cmd.Flags().StringVar(&themeName, "theme", "", "theme (default dark)")
	return cmd
}

// runInteractive launches the terminal editor and blocks until it quits.
func (a *app) runInteractive(ctx context.Context, path string, watch bool, th theme.Theme) error {
	d, err := loadOrNew(path)
	if err != nil {
		return err
	}

	win := drag.NewDispatcher()
	opts := editor.Options{
		Sizer:        autosize.NewSizer(autosize.CellMeasurer{CellWidth: cellWidth, CellHeight: cellHeight}, a.cfg.Sizing),
		Layout:       a.cfg.Layout,
		HistoryLimit: a.cfg.History.Limit,
		Window:       win,
		Logger:       a.logger,
	}
	if gen, err := generate.NewOpenAI(a.cfg.Generate.OpenAIConfig, a.logger); err == nil {
		opts.Generator = gen
	} else {
		a.logger.Info("expansion disabled", "reason", err)
	}
	ed := editor.New(d, opts)
	ed.Viewport().SetZoom(a.cfg.Viewport.InitialZoom)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if watch && path != "" {
		go func() {
			if err := terminal.Watch(ctx, path, screen.PostEvent, 100*time.Millisecond, a.logger); err != nil {
				a.logger.Error("watch failed", "path", path, "error", err)
			}
		}()
	}

	viewer := terminal.New(screen, ed, win, terminal.Options{
		Path:        path,
		Theme:       th,
		CellWidth:   cellWidth,
		CellHeight:  cellHeight,
		ZoomStep:    a.cfg.Viewport.ZoomStep,
		PanStep:     a.cfg.Viewport.PanStep,
		ExpandCount: a.cfg.Generate.ExpandCount,
		Timeout:     a.cfg.Generate.Timeout,
		Scene:       a.sceneOptions(),
		Logger:      a.logger,
	})
	return viewer.Run(ctx)
}

// loadOrNew reads path, or returns an empty diagram when path is empty or
// does not exist yet.
func loadOrNew(path string) (*diagram.Diagram, error) {
	if path == "" {
		return nil, nil
	}
	d, err := readDiagram(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("starting new diagram", "path", path)
		return nil, nil
	}
	return d, err
}
