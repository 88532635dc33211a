// Command vskia serves, renders, dumps and previews vskia scenes.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phanxgames/vskia"
	"github.com/phanxgames/vskia/live"
	"github.com/phanxgames/vskia/server"
)

var (
	configPath string
	verbose    bool
	outPath    string

	cfg    Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vskia",
	Short: "Retained-mode shape scene graph with a PNG rasterizer",
	Long: `vskia keeps a tree of shape nodes driven by id-addressed commands
(append, insert before, remove, set shape) and rasterizes it to PNG.

Scripts are JSON files of the form
  {"root": 0, "steps": [{"action": "append", "child": 1, "container": 0}, ...]}`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an instance over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var renderCmd = &cobra.Command{
	Use:   "render [script]",
	Short: "Apply a script and write the render as PNG (or a data URI to stdout)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var dumpCmd = &cobra.Command{
	Use:   "dump [script]",
	Short: "Apply a script and print the resulting tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

var viewCmd = &cobra.Command{
	Use:   "view [script]",
	Short: "Replay a script step by step in a window",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "write PNG to this file instead of printing a data URI")

	rootCmd.AddCommand(serveCmd, renderCmd, dumpCmd, viewCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(lc LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level := zapcore.InfoLevel
	if lc.Level != "" {
		if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
			return nil, fmt.Errorf("logging.level: %w", err)
		}
	}
	if verbose || lc.Debug {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// newInstance builds an instance configured from cfg.
func newInstance(root vskia.NodeID) *vskia.Instance {
	inst := vskia.NewInstance(root)
	inst.SetLogger(logger.Named("scene"))
	inst.SetDebugMode(cfg.Logging.Debug || verbose)
	inst.SetPainter(vskia.Draw2DPainter{StrokeWidth: cfg.Render.StrokeWidth})
	return inst
}

func loadScript(path string) (*vskia.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return vskia.LoadScript(data)
}

// applyScriptFile loads a script and applies all of it to a new instance.
func applyScriptFile(path string) (*vskia.Instance, error) {
	script, err := loadScript(path)
	if err != nil {
		return nil, err
	}
	inst := newInstance(script.Root)
	if err := inst.ApplyScript(script); err != nil {
		return nil, err
	}
	return inst, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inst := newInstance(vskia.NodeID(cfg.Render.RootID))
	srv := server.New(inst, logger.Named("http"), cfg.Logging.Debug || verbose)
	return srv.ListenAndServe(ctx, server.Options{
		Addr:          cfg.Server.Addr,
		ReadTimeout:   mustDuration(cfg.Server.ReadTimeout),
		WriteTimeout:  mustDuration(cfg.Server.WriteTimeout),
		ShutdownGrace: mustDuration(cfg.Server.ShutdownGrace),
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	inst, err := applyScriptFile(args[0])
	if err != nil {
		return err
	}
	return writeRender(inst, outPath, cmd.OutOrStdout())
}

// writeRender writes a PNG file when path is set, otherwise prints a data
// URI to w.
func writeRender(inst *vskia.Instance, path string, w io.Writer) error {
	if path == "" {
		uri, err := inst.ToDataURI()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, uri)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := inst.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("wrote render", zap.String("path", path))
	return f.Close()
}

func runDump(cmd *cobra.Command, args []string) error {
	inst, err := applyScriptFile(args[0])
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), inst.Dump())
	return err
}

func runView(cmd *cobra.Command, args []string) error {
	script, err := loadScript(args[0])
	if err != nil {
		return err
	}
	v := live.NewViewer(newInstance(script.Root), script.Steps, live.Config{
		Title:      cfg.Viewer.Title,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		StepFrames: cfg.Viewer.StepFrames,
		Fade:       mustDuration(cfg.Viewer.Fade),
	}, logger.Named("live"))
	return live.Run(v)
}
