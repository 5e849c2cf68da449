// Package apiclient talks to the campaign backend REST API. It applies bearer
// authentication and a per-call timeout, unwraps the {data, error} envelope and
// translates every failure into an *Error with a display message.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Request describes one JSON call. Header entries override the defaults.
type Request struct {
	Method string
	Query  map[string]any
	Body   any
	Header http.Header
}

// Upload describes a multipart form call with a single file part.
type Upload struct {
	Fields    map[string]string
	FileField string
	FileName  string
	File      io.Reader
}

// Client is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
	newID  func() string
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

// New builds a Client. A nil httpClient uses a fresh http.Client; the timeout is
// enforced per call through the request context.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg.WithDefaults(),
		http:   httpClient,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Get issues a GET with the encoded query and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, endpoint string, query map[string]any, out any) error {
	return c.Call(ctx, endpoint, Request{Method: http.MethodGet, Query: query}, out)
}

// Post sends body as JSON and decodes the envelope data into out.
func (c *Client) Post(ctx context.Context, endpoint string, body any, out any) error {
	return c.Call(ctx, endpoint, Request{Method: http.MethodPost, Body: body}, out)
}

// Call performs a JSON request against endpoint, relative to the base URL.
func (c *Client) Call(ctx context.Context, endpoint string, req Request, out any) error {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode request body for %s: %w", endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	for key, values := range req.Header {
		header[http.CanonicalHeaderKey(key)] = values
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	return c.do(ctx, method, WithQuery(endpoint, req.Query), header, body, out)
}

// Upload posts a multipart form. Only the authorization header is added so the
// multipart boundary set here is never overridden.
func (c *Client) Upload(ctx context.Context, endpoint string, upload Upload, out any) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if upload.File != nil {
		field := upload.FileField
		if field == "" {
			field = "file"
		}
		part, err := form.CreateFormFile(field, upload.FileName)
		if err != nil {
			return fmt.Errorf("create form file for %s: %w", endpoint, err)
		}
		if _, err := io.Copy(part, upload.File); err != nil {
			return fmt.Errorf("copy upload for %s: %w", endpoint, err)
		}
	}
	for key, value := range upload.Fields {
		if err := form.WriteField(key, value); err != nil {
			return fmt.Errorf("write form field %s: %w", key, err)
		}
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("close multipart form: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", form.FormDataContentType())
	return c.do(ctx, http.MethodPost, endpoint, header, &buf, out)
}

func (c *Client) do(parent context.Context, method, endpoint string, header http.Header, body io.Reader, out any) error {
	ctx, cancel := context.WithTimeout(parent, c.cfg.Timeout)
	defer cancel()

	target := c.cfg.BaseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, endpoint, err)
	}
	req.Header = header
	if req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	requestID := c.newID()
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("api request", slog.String("method", method), slog.String("url", target), slog.String("requestId", requestID))

	res, err := c.http.Do(req)
	if err != nil {
		return c.transportError(parent, ctx, endpoint, err)
	}
	defer res.Body.Close()

	c.logger.Debug("api response", slog.Int("status", res.StatusCode), slog.String("url", target), slog.String("requestId", requestID))

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return c.transportError(parent, ctx, endpoint, err)
	}

	if apiErr := statusError(endpoint, res, raw); apiErr != nil {
		c.logger.Warn("api call failed", slog.String("url", target), slog.Int("status", res.StatusCode), slog.String("error", apiErr.Message))
		return apiErr
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return newError(ErrDecode, endpoint, res.StatusCode, msgDecode, err)
	}
	if message, failed := envelopeError(env.Error); failed {
		return newError(ErrApplication, endpoint, res.StatusCode, message, nil)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return newError(ErrNoData, endpoint, res.StatusCode, msgNoData, nil)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return newError(ErrDecode, endpoint, res.StatusCode, msgDecode, err)
	}
	return nil
}

func (c *Client) transportError(parent, ctx context.Context, endpoint string, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return fmt.Errorf("%s: %w", endpoint, parent.Err())
	}
	// The configured timeout is only reported when it is the deadline that fired.
	if errors.Is(parent.Err(), context.DeadlineExceeded) {
		c.logger.Warn("api request exceeded caller deadline", slog.String("endpoint", endpoint))
		return newError(ErrTimeout, endpoint, 0, msgDeadline, err)
	}
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		seconds := strconv.FormatFloat(c.cfg.Timeout.Seconds(), 'f', -1, 64)
		c.logger.Warn("api request timed out", slog.String("endpoint", endpoint), slog.String("timeout", seconds))
		return newError(ErrTimeout, endpoint, 0, fmt.Sprintf("Request timeout after %s seconds", seconds), err)
	}
	if isUnreachable(err) {
		c.logger.Error("api unreachable", slog.String("baseUrl", c.cfg.BaseURL), slog.Any("error", err))
		return newError(ErrUnreachable, endpoint, 0, fmt.Sprintf("Cannot connect to API at %s. Is the backend running?", c.cfg.BaseURL), err)
	}
	c.logger.Error("api network error", slog.String("endpoint", endpoint), slog.Any("error", err))
	return newError(ErrNetwork, endpoint, 0, msgNetwork, err)
}

func isUnreachable(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func statusError(endpoint string, res *http.Response, raw []byte) *Error {
	status := res.StatusCode
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return newError(ErrUnauthorized, endpoint, status, msgUnauthorized, nil)
	case status == http.StatusForbidden:
		return newError(ErrForbidden, endpoint, status, msgForbidden, nil)
	case status == http.StatusNotFound:
		return newError(ErrNotFound, endpoint, status, msgNotFound, nil)
	case status >= http.StatusInternalServerError:
		return newError(ErrServer, endpoint, status, msgServer, nil)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"detail", "error"} {
			if text, ok := body[key].(string); ok && text != "" {
				return newError(ErrHTTPStatus, endpoint, status, text, nil)
			}
		}
	}
	statusText := strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(status)))
	if statusText == "" {
		statusText = http.StatusText(status)
	}
	return newError(ErrHTTPStatus, endpoint, status, fmt.Sprintf("HTTP %d: %s", status, statusText), nil)
}

func envelopeError(value any) (string, bool) {
	switch typed := value.(type) {
	case nil:
		return "", false
	case string:
		return typed, typed != ""
	case bool:
		if typed {
			return "true", true
		}
		return "", false
	case float64:
		if typed == 0 {
			return "", false
		}
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed), true
		}
		return string(encoded), true
	}
}
