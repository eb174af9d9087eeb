package plex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mmcdole/letterplex/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	product        = "Letterplex"
	version        = "1.0"
	userAgent      = product + "/" + version
)

// clientID identifies this process to Plex; it is regenerated on every run
var clientID = uuid.New().String()

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps requests per second; rps <= 0 leaves requests unpaced
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithUnwatched includes movies that have never been played in listings
func WithUnwatched(include bool) Option {
	return func(c *Client) {
		c.includeUnwatched = include
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// Client talks to a single Plex Media Server
type Client struct {
	baseURL           string
	token             string
	machineIdentifier string // fetched from /identity
	serverVersion     string
	includeUnwatched  bool
	httpClient        *http.Client
	limiter           *rate.Limiter
	logger            *slog.Logger
}

// NewClient creates a new Plex API client
func NewClient(baseURL, token string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MachineIdentifier returns the identifier fetched by FetchIdentity
func (c *Client) MachineIdentifier() string {
	return c.machineIdentifier
}

// FetchIdentity fetches and stores the server's machineIdentifier.
// It doubles as the connection check.
func (c *Client) FetchIdentity(ctx context.Context) error {
	body, err := c.doRequest(ctx, http.MethodGet, "/identity", nil)
	if err != nil {
		return err
	}

	container, err := c.parseResponse(body)
	if err != nil {
		return err
	}

	c.machineIdentifier = container.MachineIdentifier
	c.serverVersion = container.Version
	c.logger.Info("connected to plex server",
		"url", c.baseURL,
		"machineIdentifier", c.machineIdentifier,
		"version", c.serverVersion,
	)
	return nil
}

func setHeaders(req *http.Request, token string) {
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("X-Plex-Token", token)
	}
	req.Header.Set("X-Plex-Client-Identifier", clientID)
	req.Header.Set("X-Plex-Product", product)
	req.Header.Set("X-Plex-Version", version)
	req.Header.Set("X-Plex-Platform", runtime.GOOS)
	req.Header.Set("User-Agent", userAgent)
}

// doRequest performs an authenticated HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req, c.token)

	c.logger.Debug("plex request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Error("plex request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.ErrAuthFailed
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("plex request error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

// parseResponse parses a JSON response into APIResponse
func (c *Client) parseResponse(body []byte) (*MediaContainer, error) {
	var resp APIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp.MediaContainer, nil
}

// GetLibraries returns all library sections
func (c *Client) GetLibraries(ctx context.Context) ([]domain.Library, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/library/sections", nil)
	if err != nil {
		return nil, err
	}

	container, err := c.parseResponse(body)
	if err != nil {
		return nil, err
	}

	return MapLibraries(container.Directory), nil
}

// GetMovies returns movies from a movie library with pagination support
// Returns (items, totalSize, error)
// Note: If limit=0, Plex uses its default page size.
// Unless the client includes unwatched movies, only played movies are listed.
func (c *Client) GetMovies(ctx context.Context, libID string, offset, limit int) ([]*domain.Movie, int, error) {
	query := url.Values{}
	query.Set("type", "1")
	query.Set("includeGuids", "1")
	if !c.includeUnwatched {
		query.Set("unwatched", "0")
	}
	query.Set("X-Plex-Container-Start", strconv.Itoa(offset))
	if limit > 0 {
		query.Set("X-Plex-Container-Size", strconv.Itoa(limit))
	}

	path := fmt.Sprintf("/library/sections/%s/all", url.PathEscape(libID))
	body, err := c.doRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return nil, 0, err
	}

	container, err := c.parseResponse(body)
	if err != nil {
		return nil, 0, err
	}

	totalSize := container.TotalSize
	if totalSize == 0 {
		totalSize = container.Size // Fallback if TotalSize not provided
	}

	return MapMovies(container.Metadata), totalSize, nil
}

// GetHistory returns every recorded play of one item
func (c *Client) GetHistory(ctx context.Context, ratingKey string) ([]domain.ViewEvent, error) {
	query := url.Values{}
	query.Set("metadataItemID", ratingKey)
	query.Set("sort", "viewedAt:desc")

	body, err := c.doRequest(ctx, http.MethodGet, "/status/sessions/history/all", query)
	if err != nil {
		return nil, err
	}

	container, err := c.parseResponse(body)
	if err != nil {
		return nil, err
	}

	return MapHistory(container.Metadata), nil
}
