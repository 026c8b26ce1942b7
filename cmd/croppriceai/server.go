package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/croppriceai/internal/assistant"
	"github.com/hyperengineering/croppriceai/internal/mockapi"
	"github.com/hyperengineering/croppriceai/internal/store"
	"github.com/hyperengineering/croppriceai/internal/worker"
)

var mockPort int

var mockBackendCmd = &cobra.Command{
	Use:   "mock-backend",
	Short: "Serve a simulated prediction backend for development",
	Args:  cobra.NoArgs,
	RunE:  runMockBackend,
}

func init() {
	mockBackendCmd.Flags().IntVar(&mockPort, "port", 0, "Listen port (overrides config)")
}

func runMockBackend(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// 1. Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if mockPort != 0 {
		cfg.Mock.Port = mockPort
	}

	// 2. Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)
	slog.Info("logger initialized", "level", cfg.Log.Level)

	// 3. Initialize alert store (migrations, WAL mode)
	alertStore, err := store.NewAlertStore(cfg.Mock.DatabasePath)
	if err != nil {
		return err
	}
	slog.Info("alert store initialized", "path", cfg.Mock.DatabasePath)

	// 4. Initialize assistant
	var answerer assistant.Answerer = assistant.NewKeyword(nil)
	if cfg.Mock.OpenAIAPIKey != "" {
		answerer = assistant.NewOpenAI(cfg.Mock.OpenAIAPIKey, cfg.Mock.OpenAIModel, assistant.NewKeyword(nil))
	}
	slog.Info("assistant initialized", "assistant", answerer.Name())

	// 5. Initialize HTTP router
	model := mockapi.NewModel(uint64(time.Now().UnixNano()))
	handler := mockapi.NewHandler(model, alertStore, answerer, Version)
	router := mockapi.NewRouter(handler)

	// 6. Configure HTTP server
	addr := fmt.Sprintf(":%d", cfg.Mock.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Mock.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Mock.WriteTimeout),
	}

	// 7. Workers
	var wg sync.WaitGroup
	checker := worker.NewAlertChecker(alertStore, model, worker.LogNotifier{},
		time.Duration(cfg.Mock.AlertCheckInterval))
	startWorker(ctx, &wg, "alert-checker", checker.Run)

	// 8. Start HTTP server in goroutine
	go func() {
		slog.Info("server starting", "address", addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	// 9. Block until signal received
	<-ctx.Done()
	slog.Info("shutdown initiated")

	// 10. Graceful shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Mock.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	wg.Wait()

	if err := alertStore.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
