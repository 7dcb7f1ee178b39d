package poi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Defaults for the metadata API.
const (
	DefaultBaseURL = "http://localhost:3000/api"
	DefaultTimeout = 10 * time.Second

	tracerName = "github.com/Faultbox/floorview/internal/poi"
)

// envelope is the response wrapper used by every endpoint.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client calls the metadata API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer

	mu    sync.Mutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent with each request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTracerProvider records spans with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// List returns all POIs, filtered by the optional query parameters.
func (c *Client) List(ctx context.Context, params url.Values) ([]POI, error) {
	var out []POI
	if err := c.get(ctx, "list", "/pois", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns the POIs matching the search parameters.
func (c *Client) Search(ctx context.Context, params url.Values) ([]POI, error) {
	var out []POI
	if err := c.get(ctx, "search", "/pois/search", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the POI with the given id.
func (c *Client) Get(ctx context.Context, id string) (POI, error) {
	var out POI
	err := c.get(ctx, "get", "/pois/"+url.PathEscape(id), nil, &out)
	return out, err
}

// GetByUUID returns the POI with the given uuid.
func (c *Client) GetByUUID(ctx context.Context, uuid string) (POI, error) {
	var out POI
	err := c.get(ctx, "get_by_uuid", "/pois/uuid/"+url.PathEscape(uuid), nil, &out)
	return out, err
}

// ListByFloor returns the POIs on a floor.
func (c *Client) ListByFloor(ctx context.Context, floorID string) ([]POI, error) {
	var out []POI
	if err := c.get(ctx, "list_by_floor", "/pois/floor/"+url.PathEscape(floorID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "poi."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("url.path", path),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s request: %w", op, ctxErr)
		}
		return &APIError{Message: "cannot connect to server", Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: "reading response", Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		apiErr := &APIError{Status: resp.StatusCode, Message: msg}
		switch resp.StatusCode {
		case http.StatusNotFound:
			apiErr.Err = ErrNotFound
		case http.StatusUnauthorized:
			apiErr.Err = ErrUnauthorized
			c.SetToken("")
		}
		return apiErr
	}

	if decodeErr != nil {
		return fmt.Errorf("decode %s response: %w", op, decodeErr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &APIError{Status: resp.StatusCode, Message: "empty response", Err: ErrNotFound}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", op, err)
	}
	return nil
}
