package auth

import (
	"context"

	"pocketkit/internal/browser"
)

//go:generate mockgen -source=presenter.go -package auth -destination presenter_mock.go Presenter
type Presenter interface {
	// Present shows authorizeURL to the user and returns once the user is done with it.
	Present(ctx context.Context, authorizeURL string) error
}

// PresenterFunc adapts a plain function to Presenter.
type PresenterFunc func(ctx context.Context, authorizeURL string) error

func (f PresenterFunc) Present(ctx context.Context, authorizeURL string) error {
	return f(ctx, authorizeURL)
}

// BrowserPresenter opens the URL and reports completion right away.
func BrowserPresenter(opener browser.Opener) Presenter {
	return PresenterFunc(func(_ context.Context, authorizeURL string) error {
		return opener.Open(authorizeURL)
	})
}
