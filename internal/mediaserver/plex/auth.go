package plex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mmcdole/letterplex/internal/domain"
)

const (
	plexTVBaseURL     = "https://plex.tv"
	signInEndpoint    = "/users/sign_in.json"
	resourcesEndpoint = "/api/v2/resources?includeHttps=1&includeRelay=1"
	connectionTimeout = 5 * time.Second
)

// AuthClient handles plex.tv account sign-in and server discovery
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAuthClient creates a new authentication client
func NewAuthClient(logger *slog.Logger) *AuthClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthClient{
		baseURL: plexTVBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SetBaseURL points the client at a different plex.tv endpoint
func (a *AuthClient) SetBaseURL(baseURL string) {
	a.baseURL = strings.TrimRight(baseURL, "/")
}

func (a *AuthClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		a.logger.Error("plex.tv request failed", "error", err)
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// SignIn exchanges account credentials for an authentication token
func (a *AuthClient) SignIn(ctx context.Context, username, password string) (string, error) {
	reqURL := a.baseURL + signInEndpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req, "")
	req.SetBasicAuth(username, password)

	a.logger.Debug("signing in to plex.tv", "username", username)

	body, status, err := a.do(req)
	if err != nil {
		return "", err
	}

	if status == http.StatusUnauthorized {
		return "", domain.ErrAuthFailed
	}
	if status != http.StatusCreated && status != http.StatusOK {
		a.logger.Error("sign-in error", "status", status, "body", string(body))
		return "", fmt.Errorf("unexpected status code: %d", status)
	}

	var signIn SignInResponse
	if err := json.Unmarshal(body, &signIn); err != nil {
		return "", fmt.Errorf("failed to parse sign-in response: %w", err)
	}
	if signIn.User.AuthToken == "" {
		return "", fmt.Errorf("%w: sign-in returned no token", domain.ErrAuthFailed)
	}

	a.logger.Info("signed in to plex.tv", "username", signIn.User.Username)
	return signIn.User.AuthToken, nil
}

// GetResources returns the media servers available to the account
func (a *AuthClient) GetResources(ctx context.Context, token string) ([]Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+resourcesEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req, token)

	body, status, err := a.do(req)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		return nil, domain.ErrAuthFailed
	}
	if status != http.StatusOK {
		a.logger.Error("resources request error", "status", status, "body", string(body))
		return nil, fmt.Errorf("unexpected status code: %d", status)
	}

	var resources []Resource
	if err := json.Unmarshal(body, &resources); err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}

	return MapServers(resources), nil
}

// TestConnection checks that serverURL answers /identity with token
func (a *AuthClient) TestConnection(ctx context.Context, serverURL, token string) error {
	ctx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(serverURL, "/")+"/identity", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req, token)

	_, status, err := a.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d", status)
	}
	return nil
}

// FindServerURL returns the first connection of server that answers,
// trying direct connections before relays.
func (a *AuthClient) FindServerURL(ctx context.Context, server Resource, token string) (string, error) {
	for _, relay := range []bool{false, true} {
		for _, conn := range server.Connections {
			if conn.Relay != relay {
				continue
			}

			err := a.TestConnection(ctx, conn.URI, token)
			if err == nil {
				return conn.URI, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			a.logger.Debug("connection test failed", "uri", conn.URI, "relay", relay, "error", err)
		}
	}

	return "", fmt.Errorf("%w: no working connection for server %s", domain.ErrServerOffline, server.Name)
}
