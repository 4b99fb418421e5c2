package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const backendOrigin = "http://backend.example"

func postComplete(t *testing.T, handler http.Handler, origin, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/complete", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestAuthRelayHandler(t *testing.T) {
	qualifying := `{"type":"graph-auth-complete","ok":true}`

	t.Run("qualifying notification resolves the relay", func(t *testing.T) {
		h := NewAuthRelayHandler(backendOrigin)

		w := postComplete(t, h, backendOrigin, qualifying)
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Sesión iniciada") {
			t.Error("expected the completion page")
		}

		select {
		case result := <-h.Result():
			if !result.OK {
				t.Error("expected a successful result")
			}
		case <-time.After(time.Second):
			t.Fatal("relay never resolved")
		}
	})

	t.Run("foreign origin is ignored silently", func(t *testing.T) {
		h := NewAuthRelayHandler(backendOrigin)

		w := postComplete(t, h, "http://evil.example", qualifying)
		if w.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", w.Code)
		}

		select {
		case <-h.Result():
			t.Error("foreign origin must not resolve the relay")
		default:
		}
	})

	t.Run("non-qualifying payloads keep the relay waiting", func(t *testing.T) {
		h := NewAuthRelayHandler(backendOrigin)

		for _, body := range []string{
			`{"type":"something-else","ok":true}`,
			`{"type":"graph-auth-complete","ok":false}`,
			`not json`,
		} {
			w := postComplete(t, h, backendOrigin, body)
			if w.Code != http.StatusNoContent {
				t.Errorf("body %q: expected 204, got %d", body, w.Code)
			}
		}

		select {
		case <-h.Result():
			t.Error("non-qualifying payloads must not resolve the relay")
		default:
		}
	})

	t.Run("second qualifying notification is rejected", func(t *testing.T) {
		h := NewAuthRelayHandler(backendOrigin)

		if w := postComplete(t, h, backendOrigin, qualifying); w.Code != http.StatusOK {
			t.Fatalf("first notification failed: %d", w.Code)
		}
		if w := postComplete(t, h, backendOrigin, qualifying); w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for the duplicate, got %d", w.Code)
		}
	})

	t.Run("preflight gets CORS headers", func(t *testing.T) {
		h := NewAuthRelayHandler(backendOrigin)

		req := httptest.NewRequest(http.MethodOptions, "/auth/complete", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != backendOrigin {
			t.Errorf("unexpected allow-origin %q", got)
		}
	})

	t.Run("GET is not allowed", func(t *testing.T) {
		h := NewAuthRelayHandler(backendOrigin)

		req := httptest.NewRequest(http.MethodGet, "/auth/complete", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("routes registered handlers", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewAuthRelayHandler(backendOrigin))

		w := postComplete(t, router, backendOrigin, `{"type":"graph-auth-complete","ok":true}`)
		if w.Code != http.StatusOK {
			t.Errorf("expected the relay handler to be reached, got %d", w.Code)
		}
	})

	t.Run("middleware wraps handlers", func(t *testing.T) {
		router := NewBasicRouter()
		var called bool
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				next.ServeHTTP(w, r)
			})
		})
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if !called {
			t.Error("expected the middleware to run")
		}
	})
}
