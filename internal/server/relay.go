package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// authCompleteType is the payload type the backend's popup completion page
// posts when the Graph login finished.
const authCompleteType = "graph-auth-complete"

// RelayResult contains the outcome of a delegated-login relay.
type RelayResult struct {
	OK  bool
	err error
}

func (r *RelayResult) Error() error {
	return r.err
}

// authMessage is the notification payload relayed by the popup page.
type authMessage struct {
	Type string `json:"type"`
	OK   bool   `json:"ok"`
}

// AuthRelayHandler receives the login-complete notification from the browser
// popup. Implements the [Handler] interface for registration with a [Router].
//
// Only notifications whose origin exactly matches the backend origin and
// whose payload marks a successful completion are relayed; anything else is
// acknowledged and discarded, leaving the flow waiting. The first qualifying
// notification wins; later ones are rejected.
type AuthRelayHandler struct {
	expectedOrigin string
	resultChan     chan RelayResult
	once           sync.Once
	delivered      bool
	mu             sync.Mutex
}

// NewAuthRelayHandler creates a relay handler that accepts notifications from
// the given backend origin.
func NewAuthRelayHandler(expectedOrigin string) *AuthRelayHandler {
	return &AuthRelayHandler{
		expectedOrigin: expectedOrigin,
		resultChan:     make(chan RelayResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthRelayHandler) Routes() []string {
	return []string{"/auth/complete"}
}

// ServeHTTP handles the relayed notification.
//
// The popup page posts a JSON body of shape {"type": "...", "ok": true}; its
// Origin header must match the backend origin. Mismatched origins and
// non-qualifying payloads get a 204 and do not resolve the relay.
func (h *AuthRelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS preflight from the popup page
	if r.Method == http.MethodOptions {
		h.writeCORS(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if origin := r.Header.Get("Origin"); origin != h.expectedOrigin {
		// Foreign origin: ignore silently, keep waiting.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var msg authMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if msg.Type != authCompleteType || !msg.OK {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.mu.Lock()
	if h.delivered {
		h.mu.Unlock()
		http.Error(w, "Login already processed", http.StatusBadRequest)
		return
	}
	h.delivered = true
	h.mu.Unlock()

	h.Send(RelayResult{OK: true})

	h.writeCORS(w)
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, relayDonePage)
}

func (h *AuthRelayHandler) writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", h.expectedOrigin)
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// Send delivers the relay result through the channel (only once).
func (h *AuthRelayHandler) Send(result RelayResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving relay completion.
//
// Channel will receive exactly one result and then be closed.
func (h *AuthRelayHandler) Result() <-chan RelayResult {
	return h.resultChan
}

const relayDonePage = `
<!DOCTYPE html>
<html>
<head>
    <title>Login Complete</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #F7F4F1; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #AD5752; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Sesión iniciada</h1>
        <p>Puedes cerrar esta ventana y volver al terminal.</p>
    </div>
</body>
</html>
`
