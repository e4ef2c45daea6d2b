package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"pocketkit/internal/models"
	"pocketkit/internal/transport"
	"pocketkit/internal/webserver"
)

// Pocket X-Error-Code values returned by /v3/oauth/authorize.
const (
	CodeUserRejected = 158
	CodeServerIssue  = 199
)

// RetryPredicate reports whether a failed token exchange should be tried again.
type RetryPredicate func(err error) bool

// RetryAlways retries every failure until the attempt bound is reached.
func RetryAlways(error) bool { return true }

// RetryWhilePending retries only while the user may still be approving the request
// (the exchange is refused as not yet approved) or the failure is transient.
// Other API errors end the login immediately.
func RetryWhilePending(err error) bool {
	var apiErr *transport.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusForbidden && apiErr.Code == CodeUserRejected:
			return true
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return true
		default:
			return false
		}
	}
	var parseErr *transport.ParseError
	return !errors.As(err, &parseErr) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// LoginBrowser opens the approval page in the system browser and polls the token
// exchange at a fixed interval until it succeeds or the attempt bound is reached.
func (a *Authenticator) LoginBrowser(ctx context.Context) (models.Authorization, error) {
	return a.login(ctx, a.browserRedirect, BrowserPresenter(a.opener), a.pollAuthorize)
}

func (a *Authenticator) pollAuthorize(ctx context.Context, requestToken string) (models.Authorization, error) {
	attempt := 0
	op := func() (models.Authorization, error) {
		attempt++
		auth, err := a.Authorize(ctx, requestToken)
		if err != nil && !a.retryIf(err) {
			return auth, backoff.Permanent(err)
		}
		return auth, err
	}

	auth, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(a.pollInterval)),
		backoff.WithMaxTries(a.pollAttempts),
		backoff.WithMaxElapsedTime(a.pollTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			a.logger.Debugf("Authorization attempt %d/%d failed, retrying in %s: %v", attempt, a.pollAttempts, next, err)
		}),
	)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		return models.Authorization{}, fmt.Errorf("authorization not completed after %d attempt(s): %w", attempt, err)
	}
	return auth, nil
}

// LoginLocal binds a loopback listener, opens the approval page and waits for the
// browser to be redirected back before exchanging the token. The listener is closed
// on every exit path.
func (a *Authenticator) LoginLocal(ctx context.Context) (models.Authorization, error) {
	catcher, err := webserver.Listen(a.callbackPort, "/callback/"+a.newState(), a.logger)
	if err != nil {
		return models.Authorization{}, err
	}
	defer func() {
		if err := catcher.Close(); err != nil {
			a.logger.Warnf("Error closing authorization callback listener: %v", err)
		}
	}()

	presenter := PresenterFunc(func(ctx context.Context, authorizeURL string) error {
		if err := a.opener.Open(authorizeURL); err != nil {
			return err
		}
		a.logger.Infof("Waiting for authorization in the browser: %s", authorizeURL)
		if err := catcher.Wait(ctx); err != nil {
			return err
		}
		return catcher.Close()
	})

	return a.login(ctx, catcher.RedirectURL(), presenter, a.Authorize)
}
