// Package auth captures a Puter bearer token through a
// browser-interactive login flow: it binds a local callback listener,
// opens the sign-in page with a redirect back to localhost, and waits
// for the redirect to deliver the token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/browser"
)

const (
	// DefaultPort is the documented callback port. A fixed port keeps
	// the redirect URL stable across runs; a pre-registered redirect
	// breaks if the port changes, so a busy port fails fast instead of
	// falling back to a random one.
	DefaultPort = 8969

	// CallbackPath is the local path the login flow redirects back to.
	CallbackPath = "/auth/callback"

	// DefaultTimeout bounds how long Run waits for the callback.
	DefaultTimeout = 180 * time.Second

	signInPath = "/action/sign-in"
)

// ErrAuthTimeout is returned when no callback arrives before the deadline.
var ErrAuthTimeout = errors.New("no auth callback received before the deadline")

// ErrCallbackMalformed is returned when a callback arrives without a
// token parameter.
var ErrCallbackMalformed = errors.New("auth callback did not include a token")

// BrowserLaunchError is returned when the system browser cannot be
// started. URL is the login URL for manual opening.
type BrowserLaunchError struct {
	URL string
	Err error
}

func (e *BrowserLaunchError) Error() string {
	return fmt.Sprintf("could not open browser (open this URL manually: %s): %v", e.URL, e.Err)
}

func (e *BrowserLaunchError) Unwrap() error { return e.Err }

// captureMu serializes capture flows process-wide: two concurrent runs
// cannot share the fixed callback port.
var captureMu sync.Mutex

// Flow drives one browser login and captures the resulting token. A
// Flow is single-use; a caller wanting to retry creates a new one.
type Flow struct {
	// GUIOrigin is the base URL of the login page. Empty uses
	// https://puter.com.
	GUIOrigin string

	// Port for the local callback listener. Zero uses DefaultPort.
	Port int

	// AllowTempGuest asks the login page to create a throwaway account
	// instead of requiring registration.
	AllowTempGuest bool

	// Timeout bounds the wait for the callback. Zero uses DefaultTimeout.
	Timeout time.Duration

	// OpenBrowser launches the login URL. Nil uses the system browser.
	OpenBrowser func(url string) error
}

type captureResult struct {
	token string
	err   error
}

// Run executes the flow and blocks until a token is captured, the
// timeout elapses, or ctx is canceled. The listener is torn down on
// every exit path; the port is free again when Run returns.
func (f *Flow) Run(ctx context.Context) (string, error) {
	captureMu.Lock()
	defer captureMu.Unlock()

	port := f.Port
	if port == 0 {
		port = DefaultPort
	}
	origin := f.GUIOrigin
	if origin == "" {
		origin = "https://puter.com"
	}
	timeout := f.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	open := f.OpenBrowser
	if open == nil {
		open = browser.OpenURL
	}

	// Bind before launching the browser so a busy port fails fast
	// instead of sending the user through a login that cannot call back.
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return "", fmt.Errorf("binding callback listener: %w", err)
	}
	// Shutdown only closes listeners the server has registered. On a
	// fast exit the serve goroutine may not have gotten that far yet,
	// so close the listener directly as well; the port must be free
	// the moment Run returns.
	defer ln.Close()

	results := make(chan captureResult, 1)
	srv := &http.Server{Handler: callbackRouter(results)}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	signIn := loginURL(origin, ln.Addr().(*net.TCPAddr).Port, f.AllowTempGuest)
	if err := open(signIn); err != nil {
		return "", &BrowserLaunchError{URL: signIn, Err: err}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		if res.err != nil {
			return "", res.err
		}
		return res.token, nil
	case <-timer.C:
		return "", fmt.Errorf("%w (waited %s)", ErrAuthTimeout, timeout)
	case err := <-serveErr:
		return "", fmt.Errorf("callback listener: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// callbackRouter accepts at most one meaningful callback. Favicon
// probes and unknown paths are answered without resolving the flow.
func callbackRouter(results chan captureResult) http.Handler {
	r := chi.NewRouter()
	r.Get(CallbackPath, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		token := q.Get("token")
		switch {
		case token != "":
			deliver(results, captureResult{token: token})
		case len(q) == 0:
			// The token may ride in the URL fragment, which the browser
			// never sends to the server. Serve a page that forwards it
			// back as a query parameter.
			writeHTML(w, forwarderPage)
			return
		default:
			deliver(results, captureResult{err: ErrCallbackMalformed})
		}
		writeHTML(w, donePage)
	})
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// deliver hands over the first result; later callbacks are ignored.
func deliver(ch chan captureResult, res captureResult) {
	select {
	case ch <- res:
	default:
	}
}

func loginURL(origin string, port int, allowTempGuest bool) string {
	redirect := fmt.Sprintf("http://127.0.0.1:%d%s", port, CallbackPath)
	v := url.Values{}
	v.Set("embedded_in_popup", "true")
	v.Set("attempt_temp_user_creation", strconv.FormatBool(allowTempGuest))
	v.Set("redirectURL", redirect)
	return strings.TrimRight(origin, "/") + signInPath + "?" + v.Encode()
}
