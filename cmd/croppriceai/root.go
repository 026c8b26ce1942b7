package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/croppriceai/internal/config"
	"github.com/hyperengineering/croppriceai/internal/render"
	"github.com/hyperengineering/croppriceai/internal/session"
	"github.com/hyperengineering/croppriceai/internal/shell"
	"github.com/hyperengineering/croppriceai/internal/store"
	"github.com/hyperengineering/croppriceai/internal/validation"
	"github.com/hyperengineering/croppriceai/internal/view"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

// errReported means the command already printed its failure.
var errReported = errors.New("reported")

var configPath string

var rootCmd = &cobra.Command{
	Use:           "croppriceai",
	Short:         "CropPriceAI - crop price prediction and farm advisory client",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          withApp("", runMenu),
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Show the navigation menu",
	Args:  cobra.NoArgs,
	RunE:  withApp("", runMenu),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (overrides CROPPRICEAI_CONFIG_PATH)")

	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd)
	rootCmd.AddCommand(predictCmd, analyticsCmd, recommendCmd, pestCmd, weatherCmd, geoCmd)
	rootCmd.AddCommand(marketCmd, alertsCmd, chatCmd)
	rootCmd.AddCommand(mockBackendCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// app is everything a client command needs.
type app struct {
	cfg    *config.Config
	store  *store.SQLiteStore
	sess   *session.Session
	shell  *shell.Shell
	client *agriapi.Client
	out    *render.Renderer
	errOut *render.Renderer
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	setupLogging(cmd.ErrOrStderr(), cfg.Log)

	path, err := config.ExpandPath(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	st, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	sess, err := session.Open(cmd.Context(), st)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		cfg:   cfg,
		store: st,
		sess:  sess,
		shell: shell.New(sess),
		client: agriapi.New(cfg.Backend.BaseURL,
			agriapi.WithTimeout(time.Duration(cfg.Backend.Timeout)),
			agriapi.WithUserAgent("croppriceai/"+Version),
		),
		out:    render.New(cmd.OutOrStdout()),
		errOut: render.New(cmd.ErrOrStderr()),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}
}

// withApp opens the app around fn. A non-empty menu names the shell item the
// command belongs to; it runs only when the shell allows it.
func withApp(menu string, fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if menu != "" && !a.shell.Allowed(menu) {
			fmt.Fprintln(cmd.ErrOrStderr(), a.errOut.Failure("Please log in first: croppriceai login"))
			return errReported
		}
		return fn(cmd, args, a)
	}
}

func runMenu(cmd *cobra.Command, _ []string, a *app) error {
	fmt.Fprintln(cmd.OutOrStdout(), a.out.Menu(a.shell.Greeting(), a.shell.Items()))
	return nil
}

// report prints err the way the view would show it and returns errReported.
func (a *app) report(cmd *cobra.Command, err error, failure string) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		fmt.Fprintln(cmd.ErrOrStderr(), a.errOut.FieldErrors(verrs))
	case errors.Is(err, view.ErrBusy):
		fmt.Fprintln(cmd.ErrOrStderr(), a.errOut.Notice("A request is already in progress."))
	default:
		slog.Debug("request failed", "error", err)
		fmt.Fprintln(cmd.ErrOrStderr(), a.errOut.Failure(failure))
	}
	return errReported
}

// notice prints a view's dependent-lookup notice, if any.
func (a *app) notice(cmd *cobra.Command, msg string) {
	if msg != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), a.errOut.Notice(msg))
	}
}

// fieldSetter is any view whose fields can be edited.
type fieldSetter interface {
	UpdateField(name, value string) bool
}

// applySets applies "name=value" pairs from --set flags.
func applySets(v fieldSetter, sets []string) error {
	for _, kv := range sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q: want name=value", kv)
		}
		if !v.UpdateField(strings.TrimSpace(name), value) {
			return fmt.Errorf("cannot set %q: unknown field or value not allowed", kv)
		}
	}
	return nil
}

func setupLogging(w io.Writer, cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
