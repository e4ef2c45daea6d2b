package webserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"pocketkit/internal/logger"
)

const (
	callbackHost    = "127.0.0.1"
	requestTimeout  = 1200 * time.Millisecond
	shutdownTimeout = 2 * time.Second
)

// Catcher is a one-shot local HTTP server that waits for the authorization redirect.
type Catcher struct {
	listener net.Listener
	server   *http.Server
	path     string
	logger   *logger.Logger

	hit       chan struct{}
	hitOnce   sync.Once
	serveErr  chan error
	closeOnce sync.Once
	closeErr  error
}

// Listen binds the callback listener on the loopback interface and starts serving.
// Port 0 picks a free port. path is the only route that completes the wait.
func Listen(port int, path string, l *logger.Logger) (*Catcher, error) {
	if l == nil {
		l = logger.Nop()
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(callbackHost, fmt.Sprint(port)))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for authorization callback: %w", err)
	}

	c := &Catcher{
		listener: ln,
		path:     path,
		logger:   l,
		hit:      make(chan struct{}),
		serveErr: make(chan error, 1),
	}

	router := mux.NewRouter()
	router.HandleFunc(path, c.handleCallback).Methods(http.MethodGet)
	router.Use(LoggingMiddleware(l))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.Warnf("404 Not Found: URL=%s, Method=%s", r.URL.Path, r.Method)
		http.Error(w, "404 Not Found", http.StatusNotFound)
	})

	c.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: requestTimeout,
		WriteTimeout:      requestTimeout,
	}

	go func() {
		if err := c.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.serveErr <- err
		}
	}()

	l.Debugf("Authorization callback listening on %s", ln.Addr())
	return c, nil
}

// RedirectURL is the address the browser should be sent back to.
func (c *Catcher) RedirectURL() string {
	return fmt.Sprintf("http://%s%s", c.listener.Addr().String(), c.path)
}

func (c *Catcher) handleCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(closeWindowPage()); err != nil {
		c.logger.Warnf("Error writing callback page: %v", err)
	}
	c.hitOnce.Do(func() { close(c.hit) })
}

// Wait blocks until the callback route is requested, the server fails or ctx ends.
func (c *Catcher) Wait(ctx context.Context) error {
	select {
	case <-c.hit:
		return nil
	case err := <-c.serveErr:
		return fmt.Errorf("authorization callback server failed: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the server down and releases the port. Safe to call more than once.
func (c *Catcher) Close() error {
	c.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c.closeErr = c.server.Shutdown(ctx)
	})
	return c.closeErr
}

func element(a atom.Atom, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for _, child := range children {
		n.AppendChild(child)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func closeWindowPage() []byte {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(element(atom.Html,
		element(atom.Head, element(atom.Title, text("Pocket authorization"))),
		element(atom.Body,
			element(atom.P, text("Authorization received. You can close this window.")),
			element(atom.Script, text("window.close();")),
		),
	))

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return []byte("<script>window.close();</script>")
	}
	return buf.Bytes()
}
