package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"pocketkit/internal/logger"
)

const (
	defaultHTTPTimeout = 10 * time.Second

	contentTypeJSON = "application/json; charset=UTF-8"
	acceptJSON      = "application/json"
)

// Object is a decoded JSON object whose values are left undecoded.
type Object map[string]json.RawMessage

// Decode unmarshals the value stored under key into v. A missing key leaves v untouched.
func (o Object) Decode(key string, v any) error {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode field %q: %w", key, err)
	}
	return nil
}

// String returns the value under key as a string. Numbers are returned in their JSON form.
func (o Object) String(key string) string {
	raw, ok := o[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

//go:generate mockgen -source=transport.go -package transport -destination transport_mock.go Transport
type Transport interface {
	// Post sends payload as JSON to endpoint and returns the decoded response object.
	// Exactly one of the return values is non-nil.
	Post(ctx context.Context, endpoint string, payload any) (Object, error)
}

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("API error: %s (status: %d, code: %d)", e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("API error: %s (status: %d)", e.Message, e.StatusCode)
}

// ParseError is returned when a response body is not a JSON object.
type ParseError struct {
	Body []byte
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response body: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNotObject = errors.New("response is not a JSON object")

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// NewHTTPTransport creates an HTTPTransport. A zero timeout selects the default.
func NewHTTPTransport(timeout time.Duration, log *logger.Logger) *HTTPTransport {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &HTTPTransport{
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     log,
	}
}

func (t *HTTPTransport) Post(ctx context.Context, endpoint string, payload any) (Object, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("X-Accept", acceptJSON)

	start := time.Now()
	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	t.Logger.Debugf("POST %s -> %d (%s)", endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newAPIError(resp)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var obj Object
	if err := json.Unmarshal(bodyBytes, &obj); err != nil {
		return nil, &ParseError{Body: bodyBytes, Err: err}
	}
	if obj == nil {
		return nil, &ParseError{Body: bodyBytes, Err: errNotObject}
	}
	return obj, nil
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Header.Get("X-Error")}
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	if code, err := strconv.Atoi(resp.Header.Get("X-Error-Code")); err == nil {
		apiErr.Code = code
	}
	return apiErr
}
