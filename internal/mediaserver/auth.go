package mediaserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/letterplex/internal/config"
	"github.com/mmcdole/letterplex/internal/domain"
	"github.com/mmcdole/letterplex/internal/mediaserver/plex"
)

// accountAuth is the plex.tv surface used by the account flow
type accountAuth interface {
	SignIn(ctx context.Context, username, password string) (string, error)
	GetResources(ctx context.Context, token string) ([]plex.Resource, error)
	FindServerURL(ctx context.Context, server plex.Resource, token string) (string, error)
}

// locateServer signs in and returns a working address and token for the named server
func locateServer(ctx context.Context, auth accountAuth, cfg config.PlexConfig, logger *slog.Logger) (string, string, error) {
	accountToken, err := auth.SignIn(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return "", "", fmt.Errorf("plex.tv sign-in: %w", err)
	}

	servers, err := auth.GetResources(ctx, accountToken)
	if err != nil {
		return "", "", fmt.Errorf("list plex servers: %w", err)
	}

	server, err := ResolveServer(servers, cfg.ServerName)
	if err != nil {
		return "", "", err
	}
	if !strings.EqualFold(server.Name, cfg.ServerName) {
		logger.Warn("server name not found, using closest match", "configured", cfg.ServerName, "using", server.Name)
	}

	// Shared servers issue their own access token
	token := server.AccessToken
	if token == "" {
		token = accountToken
	}

	url, err := auth.FindServerURL(ctx, server, token)
	if err != nil {
		return "", "", err
	}
	logger.Info("found plex server", "server", server.Name, "url", url)
	return url, token, nil
}

// serverNames implements sahilm/fuzzy.Source over resource names
type serverNames []plex.Resource

// String returns the lowercase name at index i (implements fuzzy.Source)
func (s serverNames) String(i int) string { return strings.ToLower(s[i].Name) }

// Len returns the number of servers (implements fuzzy.Source)
func (s serverNames) Len() int { return len(s) }

// ResolveServer picks the server called name, case-insensitively, falling
// back to the best fuzzy match.
func ResolveServer(servers []plex.Resource, name string) (plex.Resource, error) {
	for _, s := range servers {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}

	matches := fuzzy.FindFrom(strings.ToLower(name), serverNames(servers))
	if len(matches) == 0 {
		available := make([]string, len(servers))
		for i, s := range servers {
			available[i] = s.Name
		}
		return plex.Resource{}, fmt.Errorf("%w: %q (available: %s)",
			domain.ErrServerNotFound, name, strings.Join(available, ", "))
	}
	return servers[matches[0].Index], nil
}
