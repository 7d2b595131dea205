package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Static errors for API client operations.
var (
	// ErrBaseURLRequired is returned when the backend URL is not provided.
	ErrBaseURLRequired = errors.New("api: base URL is required")
	// ErrInvalidRequest is returned when a request fails validation before being sent.
	ErrInvalidRequest = errors.New("api: invalid request")
	// ErrEmptyResponse is returned when a 2xx response carries no audio.
	ErrEmptyResponse = errors.New("api: empty response body")
	// ErrServerError is returned when the server returns a 5xx status code.
	ErrServerError = errors.New("api: server error")
	// ErrRateLimited is returned when the server returns a 429 status code.
	ErrRateLimited = errors.New("api: rate limited")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("api: request failed")
)

// fallbackErrorMessage is used when a failed response carries no error field.
const fallbackErrorMessage = "Failed to process audio"

// Client defines the interface for interacting with the processing backend.
type Client interface {
	// Transform applies a vibe effect to the media behind a link.
	Transform(ctx context.Context, req TransformRequest) (*Blob, error)

	// Split cuts the [StartTime, EndTime] selection out of an audio file.
	Split(ctx context.Context, req SplitRequest) (*Blob, error)

	// Mix combines several tracks into one clip.
	Mix(ctx context.Context, req MixRequest) (*Blob, error)

	// Health reports whether the backend is up.
	Health(ctx context.Context) (HealthStatus, error)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// HTTPClient is the HTTP implementation of the Client interface.
type HTTPClient struct {
	baseURL     string
	httpClient  *http.Client
	validate    *validator.Validate
	logger      *slog.Logger
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client. A nil client is ignored.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		if c != nil {
			hc.httpClient = c
		}
	}
}

// WithTimeout sets the request timeout. The client is copied first, so a
// client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) ClientOption {
	return func(hc *HTTPClient) {
		cp := *hc.httpClient
		cp.Timeout = d
		hc.httpClient = &cp
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
// The default is zero: a failed request is reported immediately.
func WithMaxRetries(n int) ClientOption {
	return func(hc *HTTPClient) {
		hc.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseBackoff = d
	}
}

// WithLogger sets the logger and wraps the transport with request logging.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(hc *HTTPClient) {
		hc.logger = logger
	}
}

// NewClient creates a new backend HTTP client for baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	c := &HTTPClient{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		validate:    validator.New(),
		maxRetries:  0,
		baseBackoff: 1 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger != nil {
		c.httpClient = &http.Client{
			Transport:     NewLoggingTransport(c.httpClient.Transport, c.logger),
			Timeout:       c.httpClient.Timeout,
			CheckRedirect: c.httpClient.CheckRedirect,
			Jar:           c.httpClient.Jar,
		}
	}

	return c, nil
}

// BaseURL returns the backend URL requests are sent to.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Transform sends the link and effect to POST /api/transform.
func (c *HTTPClient) Transform(ctx context.Context, req TransformRequest) (*Blob, error) {
	req.URL = strings.TrimSpace(req.URL)
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("api: marshal request: %w", err)
	}

	return c.doBlobRequest(ctx, "/api/transform", "application/json", body)
}

// Split uploads the audio and selection bounds to POST /api/split.
func (c *HTTPClient) Split(ctx context.Context, req SplitRequest) (*Blob, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	form := newMultipartForm()
	form.file("audio_file", req.FileName, req.Audio)
	form.field("start_time", formatSeconds(req.StartTime))
	form.field("end_time", formatSeconds(req.EndTime))

	body, contentType, err := form.close()
	if err != nil {
		return nil, err
	}

	return c.doBlobRequest(ctx, "/api/split", contentType, body)
}

// Mix uploads every track with its mix settings to POST /api/mix.
// Fields are numbered from zero: track_0, volume_0, start_time_0, trim_length_0, ...
func (c *HTTPClient) Mix(ctx context.Context, req MixRequest) (*Blob, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	form := newMultipartForm()
	for i, t := range req.Tracks {
		form.file(fmt.Sprintf("track_%d", i), t.FileName, t.Audio)
		form.field(fmt.Sprintf("volume_%d", i), strconv.Itoa(t.Volume))
		form.field(fmt.Sprintf("start_time_%d", i), formatSeconds(t.StartTime))
		form.field(fmt.Sprintf("trim_length_%d", i), formatSeconds(t.TrimLength))
	}

	body, contentType, err := form.close()
	if err != nil {
		return nil, err
	}

	return c.doBlobRequest(ctx, "/api/mix", contentType, body)
}

// Health queries GET /api/health.
func (c *HTTPClient) Health(ctx context.Context) (HealthStatus, error) {
	resp, err := c.doRequestWithRetry(ctx, http.MethodGet, "/api/health", "", nil)
	if err != nil {
		return HealthStatus{}, err
	}

	var status HealthStatus
	if err := json.Unmarshal(resp.body, &status); err != nil {
		return HealthStatus{}, fmt.Errorf("api: unmarshal response: %w", err)
	}
	return status, nil
}

// doBlobRequest POSTs body to path and returns the response as a blob.
func (c *HTTPClient) doBlobRequest(ctx context.Context, path, contentType string, body []byte) (*Blob, error) {
	resp, err := c.doRequestWithRetry(ctx, http.MethodPost, path, contentType, body)
	if err != nil {
		return nil, err
	}
	if len(resp.body) == 0 {
		return nil, ErrEmptyResponse
	}

	ct := resp.contentType
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" {
		ct = "audio/mpeg"
	}

	return &Blob{Data: resp.body, ContentType: ct}, nil
}

// response is the part of an HTTP response the client keeps.
type response struct {
	body        []byte
	contentType string
}

// doRequestWithRetry performs an HTTP request with exponential backoff retry.
func (c *HTTPClient) doRequestWithRetry(ctx context.Context, method, path, contentType string, body []byte) (*response, error) {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("api: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		resp, err := c.doRequest(ctx, method, path, contentType, body)
		if err == nil {
			return resp, nil
		}

		var re *retryableError
		if !errors.As(err, &re) {
			return nil, err
		}

		lastErr = re.err
	}

	return nil, lastErr
}

// doRequest performs a single HTTP request.
func (c *HTTPClient) doRequest(ctx context.Context, method, path, contentType string, body []byte) (*response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("api: request failed: %w", err)
		}
		return nil, &retryableError{err: fmt.Errorf("api: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("api: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeError(resp.StatusCode, respBody)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, &retryableError{err: apiErr}
		}
		return nil, apiErr
	}

	return &response{body: respBody, contentType: resp.Header.Get("Content-Type")}, nil
}

// decodeError builds an APIError from a failed response body.
func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: fallbackErrorMessage}

	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			apiErr.Message = payload.Error
		}
		apiErr.Details = payload.Details
	}

	return apiErr
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// formatSeconds renders a time in seconds without trailing zeros.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// multipartForm accumulates parts and remembers the first write error.
type multipartForm struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newMultipartForm() *multipartForm {
	f := &multipartForm{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *multipartForm) file(field, name string, data []byte) {
	if f.err != nil {
		return
	}
	part, err := f.w.CreateFormFile(field, name)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = part.Write(data)
}

func (f *multipartForm) field(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.w.WriteField(name, value)
}

func (f *multipartForm) close() ([]byte, string, error) {
	if f.err == nil {
		f.err = f.w.Close()
	}
	if f.err != nil {
		return nil, "", fmt.Errorf("api: build multipart body: %w", f.err)
	}
	return f.buf.Bytes(), f.w.FormDataContentType(), nil
}
