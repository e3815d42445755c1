package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/cbseprep/internal/devserver"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Serve canned answers for UI development",
	Long: `Runs a stand-in for the answer service on --addr. It speaks the same
HTTP contract but returns fixed, marks-shaped answers. Nothing is retrieved
or generated. Point the client at it with --api-url http://localhost:8000.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		latency, _ := cmd.Flags().GetDuration("latency")
		class, _ := cmd.Flags().GetInt("class")

		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		srv := &http.Server{
			Addr:              addr,
			Handler:           devserver.New(devserver.Options{Latency: latency, ClassLevel: class, Logger: logger}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("devserver listening", zap.String("addr", addr), zap.Duration("latency", latency))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("listen: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	devserverCmd.Flags().String("addr", ":8000", "Listen address")
	devserverCmd.Flags().Duration("latency", 800*time.Millisecond, "Delay before each answer")
	devserverCmd.Flags().Int("class", 10, "Class reported by /api/v1/subjects")
}
