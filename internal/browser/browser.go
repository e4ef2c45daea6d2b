package browser

import (
	"fmt"
	"io"
	"sync"

	pkgbrowser "github.com/pkg/browser"
)

//go:generate mockgen -source=browser.go -package browser -destination browser_mock.go Opener
type Opener interface {
	Open(url string) error
}

type systemOpener struct{}

var silenceOnce sync.Once

// NewSystemOpener returns an Opener that launches the system default browser.
// The first call points pkg/browser's process-wide Stdout and Stderr at io.Discard.
// Later calls leave them alone.
func NewSystemOpener() Opener {
	silenceOnce.Do(func() {
		pkgbrowser.Stdout = io.Discard
		pkgbrowser.Stderr = io.Discard
	})
	return systemOpener{}
}

func (systemOpener) Open(url string) error {
	if err := pkgbrowser.OpenURL(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// OpenerFunc adapts a plain function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error {
	return f(url)
}
