package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"pocketkit/internal/browser"
	"pocketkit/internal/logger"
	"pocketkit/internal/models"
	"pocketkit/internal/pocket"
	"pocketkit/internal/transport"
)

const (
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultPollAttempts    = 25
	DefaultCallbackPort    = 8081
	DefaultBrowserRedirect = "https://getpocket.com"
)

var (
	ErrNoRequestToken = errors.New("response did not contain a request token")
	ErrNoAccessToken  = errors.New("response did not contain an access token")
)

// State is a step of the authorization handshake.
type State string

const (
	StateRequested    State = "REQUESTED"
	StateAwaitingUser State = "AWAITING_USER"
	StateAuthorized   State = "AUTHORIZED"
	StateFailed       State = "FAILED"
)

// Authenticator runs the request-token / authorize / exchange handshake for one consumer key.
type Authenticator struct {
	ConsumerKey string
	BaseURL     *url.URL

	transport       transport.Transport
	opener          browser.Opener
	logger          *logger.Logger
	observer        func(State)
	pollInterval    time.Duration
	pollAttempts    uint
	pollTimeout     time.Duration
	retryIf         RetryPredicate
	callbackPort    int
	browserRedirect string
	newState        func() string
}

// Option is a functional option for configuring the Authenticator.
type Option func(*Authenticator) error

func WithTransport(t transport.Transport) Option {
	return func(a *Authenticator) error {
		a.transport = t
		return nil
	}
}

func WithOpener(o browser.Opener) Option {
	return func(a *Authenticator) error {
		a.opener = o
		return nil
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(a *Authenticator) error {
		a.logger = l
		return nil
	}
}

func WithBaseURL(baseURL string) Option {
	return func(a *Authenticator) error {
		u, err := pocket.ParseBaseURL(baseURL)
		if err != nil {
			return err
		}
		a.BaseURL = u
		return nil
	}
}

// WithObserver registers a hook called on every state transition.
func WithObserver(fn func(State)) Option {
	return func(a *Authenticator) error {
		a.observer = fn
		return nil
	}
}

// WithPolling sets the fixed interval and attempt bound of the browser login.
func WithPolling(interval time.Duration, attempts int) Option {
	return func(a *Authenticator) error {
		if interval <= 0 {
			return fmt.Errorf("poll interval must be positive, got %s", interval)
		}
		if attempts < 1 {
			return fmt.Errorf("poll attempts must be at least 1, got %d", attempts)
		}
		a.pollInterval = interval
		a.pollAttempts = uint(attempts)
		return nil
	}
}

// WithPollTimeout bounds the total time the browser login spends polling.
// 0, the default, leaves the attempt count as the only bound.
func WithPollTimeout(d time.Duration) Option {
	return func(a *Authenticator) error {
		if d < 0 {
			return fmt.Errorf("poll timeout must not be negative, got %s", d)
		}
		a.pollTimeout = d
		return nil
	}
}

// WithRetryPredicate decides which exchange errors the browser login retries.
func WithRetryPredicate(p RetryPredicate) Option {
	return func(a *Authenticator) error {
		a.retryIf = p
		return nil
	}
}

// WithCallbackPort sets the local redirect port. 0 picks a free port.
func WithCallbackPort(port int) Option {
	return func(a *Authenticator) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("invalid callback port %d", port)
		}
		a.callbackPort = port
		return nil
	}
}

// WithBrowserRedirect sets where the browser login sends the user after approval.
func WithBrowserRedirect(redirectURI string) Option {
	return func(a *Authenticator) error {
		if _, err := url.ParseRequestURI(redirectURI); err != nil {
			return fmt.Errorf("invalid browser redirect: %w", err)
		}
		a.browserRedirect = redirectURI
		return nil
	}
}

// New creates an Authenticator for consumerKey.
func New(consumerKey string, opts ...Option) (*Authenticator, error) {
	if consumerKey == "" {
		return nil, pocket.ErrMissingConsumerKey
	}

	base, _ := url.Parse(pocket.DefaultBaseURL)
	a := &Authenticator{
		ConsumerKey:     consumerKey,
		BaseURL:         base,
		pollInterval:    DefaultPollInterval,
		pollAttempts:    DefaultPollAttempts,
		retryIf:         RetryAlways,
		callbackPort:    DefaultCallbackPort,
		browserRedirect: DefaultBrowserRedirect,
		newState:        uuid.NewString,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.logger == nil {
		a.logger = logger.Nop()
	}
	if a.transport == nil {
		a.transport = transport.NewHTTPTransport(0, a.logger)
	}
	if a.opener == nil {
		a.opener = browser.NewSystemOpener()
	}
	return a, nil
}

func (a *Authenticator) endpoint(path string) string {
	return a.BaseURL.JoinPath(path).String()
}

func (a *Authenticator) enter(s State) {
	a.logger.Debugf("Authorization state: %s", s)
	if a.observer != nil {
		a.observer(s)
	}
}

// RequestToken obtains a short-lived request token bound to redirectURI.
func (a *Authenticator) RequestToken(ctx context.Context, redirectURI string) (string, error) {
	obj, err := a.transport.Post(ctx, a.endpoint(pocket.PathRequestToken), map[string]any{
		"consumer_key": a.ConsumerKey,
		"redirect_uri": redirectURI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to obtain request token: %w", err)
	}

	code := obj.String("code")
	if code == "" {
		return "", ErrNoRequestToken
	}
	return code, nil
}

// Authorize exchanges an approved request token for an access token.
func (a *Authenticator) Authorize(ctx context.Context, requestToken string) (models.Authorization, error) {
	obj, err := a.transport.Post(ctx, a.endpoint(pocket.PathAuthorizeToken), map[string]any{
		"consumer_key": a.ConsumerKey,
		"code":         requestToken,
	})
	if err != nil {
		return models.Authorization{}, fmt.Errorf("failed to authorize request token: %w", err)
	}

	auth := models.Authorization{
		AccessToken: obj.String("access_token"),
		Username:    obj.String("username"),
	}
	if auth.AccessToken == "" {
		return models.Authorization{}, ErrNoAccessToken
	}
	return auth, nil
}

// AuthorizeURL builds the user-facing approval page URL. The token is embedded verbatim
// and encodedRedirect must already be query-escaped.
func (a *Authenticator) AuthorizeURL(requestToken, encodedRedirect string) string {
	return a.endpoint(pocket.PathAuthorizePage) + "?request_token=" + requestToken + "&redirect_uri=" + encodedRedirect
}

// CustomLogin runs the handshake, handing the approval URL to p and exchanging the
// token once p returns.
func (a *Authenticator) CustomLogin(ctx context.Context, redirectURI string, p Presenter) (models.Authorization, error) {
	return a.login(ctx, redirectURI, p, a.Authorize)
}

type exchangeFunc func(ctx context.Context, requestToken string) (models.Authorization, error)

func (a *Authenticator) login(ctx context.Context, redirectURI string, p Presenter, exchange exchangeFunc) (models.Authorization, error) {
	a.enter(StateRequested)
	token, err := a.RequestToken(ctx, redirectURI)
	if err != nil {
		a.enter(StateFailed)
		return models.Authorization{}, err
	}

	a.enter(StateAwaitingUser)
	if err := p.Present(ctx, a.AuthorizeURL(token, url.QueryEscape(redirectURI))); err != nil {
		a.enter(StateFailed)
		return models.Authorization{}, fmt.Errorf("failed to present authorization page: %w", err)
	}

	auth, err := exchange(ctx, token)
	if err != nil {
		a.enter(StateFailed)
		return models.Authorization{}, err
	}

	a.enter(StateAuthorized)
	a.logger.Infof("Authorized Pocket user %s", auth.Username)
	return auth, nil
}
