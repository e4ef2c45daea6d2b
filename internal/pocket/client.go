package pocket

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net"
	"net/url"

	"github.com/go-playground/validator/v10"

	"pocketkit/internal/models"
	"pocketkit/internal/transport"
)

const DefaultBaseURL = "https://getpocket.com"

const (
	PathAdd            = "/v3/add"
	PathModify         = "/v3/modify"
	PathRetrieve       = "/v3/get"
	PathRequestToken   = "/v3/oauth/request"
	PathAuthorizeToken = "/v3/oauth/authorize"
	PathAuthorizePage  = "/auth/authorize"
)

var (
	ErrMissingConsumerKey = errors.New("consumer key is required")
	ErrMissingAccessToken = errors.New("access token is required")
)

// Client is a Pocket v3 API client bound to one set of credentials.
type Client struct {
	BaseURL     *url.URL
	ConsumerKey string
	AccessToken string

	transport transport.Transport
	validate  *validator.Validate
}

// Option is a functional option for configuring the Client.
type Option func(*Client) error

// WithTransport sets the transport used for every request.
func WithTransport(t transport.Transport) Option {
	return func(c *Client) error {
		c.transport = t
		return nil
	}
}

// WithBaseURL points the client at another API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		u, err := ParseBaseURL(baseURL)
		if err != nil {
			return err
		}
		c.BaseURL = u
		return nil
	}
}

// NewClient creates a new Pocket API client.
func NewClient(consumerKey, accessToken string, opts ...Option) (*Client, error) {
	if consumerKey == "" {
		return nil, ErrMissingConsumerKey
	}

	base, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		BaseURL:     base,
		ConsumerKey: consumerKey,
		AccessToken: accessToken,
		validate:    validator.New(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.transport == nil {
		c.transport = transport.NewHTTPTransport(0, nil)
	}
	return c, nil
}

// ParseBaseURL parses an API base URL. Plain http is only accepted for loopback hosts.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
	case "http":
		if !isLoopback(u.Hostname()) {
			return nil, fmt.Errorf("base URL %s must use https", raw)
		}
	default:
		return nil, fmt.Errorf("base URL %s has unsupported scheme %q", raw, u.Scheme)
	}
	return u, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Endpoint returns the absolute URL for an API path.
func (c *Client) Endpoint(path string) string {
	return c.BaseURL.JoinPath(path).String()
}

// Call posts params to path with both credential fields attached.
// The caller's map is not modified.
func (c *Client) Call(ctx context.Context, path string, params map[string]any) (transport.Object, error) {
	if c.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}
	return c.transport.Post(ctx, c.Endpoint(path), c.withCredentials(params))
}

func (c *Client) withCredentials(params map[string]any) map[string]any {
	payload := make(map[string]any, len(params)+2)
	maps.Copy(payload, params)
	payload["consumer_key"] = c.ConsumerKey
	payload["access_token"] = c.AccessToken
	return payload
}

// Add saves a new item.
func (c *Client) Add(ctx context.Context, req models.AddRequest) (*models.AddResult, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid add request: %w", err)
	}
	return c.AddParams(ctx, req.Params())
}

// AddParams saves a new item from raw parameters.
func (c *Client) AddParams(ctx context.Context, params map[string]any) (*models.AddResult, error) {
	obj, err := c.Call(ctx, PathAdd, params)
	if err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	res := &models.AddResult{}
	if err := obj.Decode("status", &res.Status); err != nil {
		return nil, err
	}
	if err := obj.Decode("item", &res.Item); err != nil {
		return nil, err
	}
	return res, nil
}

// Modify applies a batch of actions.
func (c *Client) Modify(ctx context.Context, req models.ModifyRequest) (*models.ModifyResult, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid modify request: %w", err)
	}
	return c.ModifyParams(ctx, req.Params())
}

// ModifyParams applies actions given as raw parameters.
func (c *Client) ModifyParams(ctx context.Context, params map[string]any) (*models.ModifyResult, error) {
	obj, err := c.Call(ctx, PathModify, params)
	if err != nil {
		return nil, fmt.Errorf("failed to modify items: %w", err)
	}

	res := &models.ModifyResult{}
	if err := obj.Decode("status", &res.Status); err != nil {
		return nil, err
	}
	if err := obj.Decode("action_results", &res.ActionResults); err != nil {
		return nil, err
	}
	return res, nil
}

// Retrieve fetches items matching the request filters.
func (c *Client) Retrieve(ctx context.Context, req models.RetrieveRequest) (*models.RetrieveResult, error) {
	return c.RetrieveParams(ctx, req.Params())
}

// RetrieveParams fetches items using raw parameters.
func (c *Client) RetrieveParams(ctx context.Context, params map[string]any) (*models.RetrieveResult, error) {
	obj, err := c.Call(ctx, PathRetrieve, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve items: %w", err)
	}

	res := &models.RetrieveResult{}
	if err := obj.Decode("status", &res.Status); err != nil {
		return nil, err
	}
	if err := obj.Decode("list", &res.List); err != nil {
		return nil, err
	}
	return res, nil
}
