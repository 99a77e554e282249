package mirrorserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "studyhub/internal/platform/errors"
	"studyhub/internal/platform/logging"
)

type Options struct {
	Addr      string
	DBPath    string
	JWTSecret string
}

// Serve runs the mirror until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func Serve(ctx context.Context, opts Options, logger *slog.Logger) error {
	if strings.TrimSpace(opts.JWTSecret) == "" {
		return fmt.Errorf("%w: mirror.jwt_secret is required", apperrors.ErrInvalidInput)
	}
	logger = logging.OrDiscard(logger)
	store, err := OpenStore(opts.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           NewRouter(store, opts.JWTSecret, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mirror listening", "addr", opts.Addr, "db", opts.DBPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown mirror: %w", err)
	}
	logger.Info("mirror stopped")
	return nil
}
