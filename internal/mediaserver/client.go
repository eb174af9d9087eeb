package mediaserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/letterplex/internal/config"
	"github.com/mmcdole/letterplex/internal/mediaserver/plex"
)

// Connect returns a client for the configured Plex server after confirming
// it answers. Direct mode uses the configured base URL and token; account
// mode signs in to plex.tv and locates the named server.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*plex.Client, error) {
	return connect(ctx, cfg, plex.NewAuthClient(logger), logger)
}

func connect(ctx context.Context, cfg *config.Config, auth accountAuth, logger *slog.Logger) (*plex.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var baseURL, token string
	switch cfg.Plex.AuthMethod {
	case config.AuthDirect:
		baseURL, token = cfg.Plex.BaseURL, cfg.Plex.Token
		logger.Info("connecting to plex server", "method", "direct", "url", baseURL)

	case config.AuthAccount:
		logger.Info("connecting to plex server", "method", "account", "server", cfg.Plex.ServerName)
		var err error
		baseURL, token, err = locateServer(ctx, auth, cfg.Plex, logger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown auth method: %s", cfg.Plex.AuthMethod)
	}

	client := plex.NewClient(baseURL, token, logger,
		plex.WithTimeout(cfg.Plex.Timeout),
		plex.WithRateLimit(cfg.Plex.RequestsPerSecond),
		plex.WithUnwatched(cfg.Plex.IncludeUnwatched),
	)

	if err := client.FetchIdentity(ctx); err != nil {
		logger.Error("failed to connect to plex server", "url", baseURL, "error", err)
		return nil, fmt.Errorf("connect to %s: %w", baseURL, err)
	}

	return client, nil
}
