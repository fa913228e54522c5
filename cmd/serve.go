package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kamusis/kbot/internal/match"
	"github.com/kamusis/kbot/internal/metrics"
	"github.com/kamusis/kbot/internal/server"
	"github.com/spf13/cobra"
)

var (
	flagServeAddr      string
	flagServeMetrics   bool
	flagServeThreshold float64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chatbot over HTTP",
	Long: `Serve the chatbot API for the browser widget.

Routes:
  POST   /api/messages          {"message": "..."} -> reply
  GET    /api/history           recorded conversation
  DELETE /api/history           clear the conversation
  GET    /api/history/export    conversation export download
  GET    /api/knowledge/stats   entry counts per category
  GET    /healthz
  GET    /metrics               with --metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default from config server_addr)")
	serveCmd.Flags().BoolVar(&flagServeMetrics, "metrics", false, "Expose Prometheus metrics on /metrics")
	serveCmd.Flags().Float64Var(&flagServeThreshold, "threshold", match.DefaultThreshold, "Minimum similarity for a knowledge base answer")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	addr := cfg.ServerAddr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}

	srvOpts := []server.Option{server.WithLogger(slog.Default())}
	if flagServeMetrics {
		p := metrics.NewPrometheus()
		metrics.SetRecorder(p)
		srvOpts = append(srvOpts, server.WithMetricsHandler(p.Handler()))
	}

	b, err := newBot(cfg, true)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           server.New(b, srvOpts...).SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	printOK("", fmt.Sprintf("listening on http://%s", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	printInfo("", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("cannot shut down server: %w", err)
	}
	return nil
}
