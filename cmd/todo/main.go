package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"myday/internal/app"
	"myday/internal/config"
	"myday/internal/storage"
	"myday/internal/ui"
	pkgLog "myday/pkg/log"
)

var Version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "todo",
		Short:         "Personal to-do lists with My Day, reminders and repeating tasks",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $MYDAY_CONFIG or the user config dir)")

	rootCmd.AddCommand(listsCmd(&configPath))
	rootCmd.AddCommand(badgeCmd(&configPath))
	rootCmd.AddCommand(remindCmd(&configPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// session is a loaded app plus the resources that must be released with it.
type session struct {
	cfg     config.Config
	app     *app.App
	l       pkgLog.Logger
	closeFn func() error
}

func (s *session) Close(ctx context.Context) error {
	err := s.app.Close(ctx)
	if cerr := s.closeFn(); err == nil {
		err = cerr
	}
	return err
}

// open loads the config, builds the backend it names and loads state.
// logToFile keeps log lines off the terminal while the TUI owns it.
func open(ctx context.Context, configPath string, logToFile bool) (*session, error) {
	if configPath == "" {
		p, err := config.ResolveConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	base := filepath.Dir(configPath)

	zc := pkgLog.ZapConfig{Level: cfg.Log.Level, Mode: cfg.Log.Mode, Encoding: cfg.Log.Encoding, ColorEnabled: true}
	if logToFile || cfg.Log.File != "" {
		file := cfg.Log.File
		if file == "" {
			file = "todo.log"
		}
		zc.OutputPaths = []string{resolve(base, file)}
	}
	l := pkgLog.Init(zc)

	var (
		backend storage.Backend
		closeFn = func() error { return nil }
	)
	switch cfg.Backend {
	case config.BackendJSON:
		fs, err := storage.NewFileStore(resolve(base, cfg.DataDir), l)
		if err != nil {
			return nil, fmt.Errorf("open data dir: %w", err)
		}
		backend = fs
	default:
		db, err := storage.Open(resolve(base, cfg.DBPath), l)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		backend, closeFn = db, db.Close
	}

	a := app.New(backend, l, app.WithSaveRate(cfg.Save.PerSecond))
	if err := a.Load(ctx); err != nil {
		closeFn()
		return nil, err
	}
	a.Run(ctx)
	return &session{cfg: cfg, app: a, l: l, closeFn: closeFn}, nil
}

// resolve makes relative paths relative to the config file's directory.
func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func runTUI(ctx context.Context, configPath string) error {
	s, err := open(ctx, configPath, true)
	if err != nil {
		return err
	}
	runErr := ui.Run(ctx, s.app, s.cfg, s.l)
	if err := s.Close(context.Background()); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
