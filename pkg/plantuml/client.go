package plantuml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perrors "github.com/pumldock/pumldock/pkg/errors"
	"github.com/pumldock/pumldock/pkg/httputil"
	"github.com/pumldock/pumldock/pkg/observability"
)

const (
	// DefaultServer is the public PlantUML rendering instance.
	DefaultServer = "https://www.plantuml.com/plantuml"

	// DefaultShortener is the link-shortening endpoint used when none is
	// configured. It accepts GET {endpoint}?url={target} and responds with
	// the short URL as plain text.
	DefaultShortener = "https://tinyurl.com/api-create.php"

	httpTimeout = 30 * time.Second
)

// BadRequestError reports a render request the server rejected with HTTP 400.
// PlantUML servers use this status for diagrams without renderable content;
// the response body still carries an image describing the problem, so callers
// may choose to keep it.
type BadRequestError struct {
	URL  string // Render URL that was rejected
	Body []byte // Response body (usually an error image)
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("render server rejected request (status 400): %s", e.URL)
}

// Client talks to a PlantUML rendering server and, optionally, a link
// shortener. Transient failures are retried with backoff. Safe for
// concurrent use.
type Client struct {
	http      *http.Client
	server    string
	shortener string
}

// NewClient creates a Client for the given rendering server base URL and
// shortener endpoint. Empty arguments fall back to [DefaultServer] and
// [DefaultShortener].
func NewClient(server, shortener string) *Client {
	if server == "" {
		server = DefaultServer
	}
	if shortener == "" {
		shortener = DefaultShortener
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		server:    strings.TrimRight(server, "/"),
		shortener: shortener,
	}
}

// Server returns the configured rendering server base URL.
func (c *Client) Server() string { return c.server }

// RenderURL builds the URL that renders encoded diagram text in the given
// format: {server}/{format}/{encoded}.
func (c *Client) RenderURL(encoded string, format Format) string {
	return fmt.Sprintf("%s/%s/%s", c.server, format, encoded)
}

// FetchImage downloads the rendered image for encoded diagram text.
// 5xx and 429 responses are retried; HTTP 400 fails with a [*BadRequestError]
// carrying the response body. Other non-200 statuses fail immediately.
func (c *Client) FetchImage(ctx context.Context, encoded string, format Format) ([]byte, error) {
	renderURL := c.RenderURL(encoded, format)

	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		body, status, err := c.get(ctx, renderURL)
		if err != nil {
			return err
		}
		switch {
		case status == http.StatusOK:
			data = body
			return nil
		case status == http.StatusBadRequest:
			return &BadRequestError{URL: renderURL, Body: body}
		case httputil.IsTransientStatus(status):
			return &httputil.RetryableError{Err: perrors.New(perrors.ErrCodeNetwork, "render server returned status %d", status)}
		default:
			return perrors.New(perrors.ErrCodeRenderFailure, "render server returned status %d for %s", status, renderURL)
		}
	})
	if err != nil {
		return nil, wrapTimeout(err, renderURL)
	}
	return data, nil
}

// Shorten asks the shortener service for a compact alias of renderURL and
// returns it. The plain-text response body is the short URL.
func (c *Client) Shorten(ctx context.Context, renderURL string) (string, error) {
	shortenURL := fmt.Sprintf("%s?url=%s", c.shortener, url.QueryEscape(renderURL))

	var short string
	err := httputil.RetryWithBackoff(ctx, func() error {
		body, status, err := c.get(ctx, shortenURL)
		if err != nil {
			return err
		}
		switch {
		case status == http.StatusOK:
			short = strings.TrimSpace(string(body))
			return nil
		case httputil.IsTransientStatus(status):
			return &httputil.RetryableError{Err: perrors.New(perrors.ErrCodeNetwork, "shortener returned status %d", status)}
		default:
			return perrors.New(perrors.ErrCodeNetwork, "shortener returned status %d", status)
		}
	})
	if err != nil {
		return "", wrapTimeout(err, shortenURL)
	}
	if short == "" {
		return "", perrors.New(perrors.ErrCodeNetwork, "shortener returned an empty response for %s", renderURL)
	}
	return short, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, perrors.Wrap(perrors.ErrCodeInternal, err, "build request for %s", rawURL)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.Render().OnRequest(ctx, http.MethodGet, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.Render().OnError(ctx, http.MethodGet, host, path, err)
		return nil, 0, &httputil.RetryableError{Err: perrors.Wrap(perrors.ErrCodeNetwork, err, "request to %s failed", rawURL)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.Render().OnError(ctx, http.MethodGet, host, path, err)
		return nil, 0, &httputil.RetryableError{Err: perrors.Wrap(perrors.ErrCodeNetwork, err, "read response from %s", rawURL)}
	}
	observability.Render().OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))
	return body, resp.StatusCode, nil
}

func wrapTimeout(err error, rawURL string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return perrors.Wrap(perrors.ErrCodeTimeout, err, "request to %s timed out", rawURL)
	}
	return err
}
