package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/pl-lineup-bot/internal/config"
	"github.com/riskibarqy/pl-lineup-bot/internal/interfaces/httpapi"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
)

// NewHTTPServer builds the API server. The returned close func releases the
// Record Store and must run after the server has shut down.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	store, err := OpenRecordStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	services := NewServices(cfg, store, logger)

	handler := httpapi.NewHandler(
		services.Anomaly,
		services.Ownership,
		services.OutOfPosition,
		services.Baseline,
		services.Snapshot,
		services.Ingestion,
		services.MatchAlerts,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return server, store.Close, nil
}
