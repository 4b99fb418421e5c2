package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/labastilla/wedx/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

// MailClient drives the backend's session-cookie mail surface.
//
// The backend holds the Microsoft Graph tokens; the client only carries the
// session cookie, so every request goes through a cookie jar.
type MailClient struct {
	baseURL    string
	httpClient *http.Client
}

// SendMailRequest is the payload for /mail/send.
type SendMailRequest struct {
	To              []string `json:"to"`
	Subject         string   `json:"subject"`
	BodyHTML        string   `json:"body_html,omitempty"`
	BodyText        string   `json:"body_text,omitempty"`
	SaveToSentItems bool     `json:"save_to_sent_items"`
}

// mailError is the backend's error envelope. Detail is either a plain string
// or a nested object carrying a graph_error field.
type mailError struct {
	Detail json.RawMessage `json:"detail"`
}

// NewMailClient creates a mail client with its own cookie jar for the
// backend at baseURL.
func NewMailClient(baseURL string, client *http.Client) (*MailClient, error) {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if client == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		client = &http.Client{Jar: jar}
	}

	return &MailClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}, nil
}

// Origin returns the backend origin the session cookie is scoped to.
func (m *MailClient) Origin() string {
	parsed, err := url.Parse(m.baseURL)
	if err != nil {
		return m.baseURL
	}
	return parsed.Scheme + "://" + parsed.Host
}

// Me checks whether the backend session is authenticated with Graph.
func (m *MailClient) Me(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/mail/me", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	var result struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Authenticated, nil
}

// LoginURL builds the popup login URL. relayOrigin is where the backend's
// completion page posts its login-complete message.
func (m *MailClient) LoginURL(relayOrigin string) string {
	u := m.baseURL + "/mail/login?popup=1"
	if relayOrigin != "" {
		u += "&origin=" + url.QueryEscape(relayOrigin)
	}
	return u
}

// Send submits the email through the backend's delegated Graph session.
//
// Non-2xx responses prefer the nested graph_error detail, then the plain
// detail string, then a generic message.
func (m *MailClient) Send(ctx context.Context, payload SendMailRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%w: %s", shared.ErrMailSendFailed, extractMailErrorDetail(raw, resp.StatusCode))
}

// extractMailErrorDetail digs the most specific error message out of the
// backend's error envelope.
func extractMailErrorDetail(raw []byte, statusCode int) string {
	fallback := fmt.Sprintf("status %d", statusCode)

	var envelope mailError
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 {
		return fallback
	}

	var nested struct {
		GraphError json.RawMessage `json:"graph_error"`
	}
	if err := json.Unmarshal(envelope.Detail, &nested); err == nil && len(nested.GraphError) > 0 {
		return strings.Trim(string(nested.GraphError), `"`)
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil && detail != "" {
		return detail
	}

	return strings.TrimSpace(string(envelope.Detail))
}

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// GraphMailer sends mail straight to Microsoft Graph with application
// credentials, bypassing the backend's popup flow. Used when the operator has
// configured tenant/client credentials.
type GraphMailer struct {
	sender     string
	tokenConf  *clientcredentials.Config
	httpClient *http.Client
	graphBase  string
}

// NewGraphMailer creates a Graph mailer for the given tenant and sender
// mailbox.
func NewGraphMailer(tenantID, clientID, clientSecret, sender string) (*GraphMailer, error) {
	if tenantID == "" || clientID == "" || clientSecret == "" || sender == "" {
		return nil, fmt.Errorf("%w: graph credentials incomplete", shared.ErrInvalidConfig)
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}

	return &GraphMailer{
		sender:    sender,
		tokenConf: conf,
		graphBase: graphBaseURL,
	}, nil
}

// SendMail posts a sendMail request to Graph on behalf of the configured
// sender mailbox.
func (g *GraphMailer) SendMail(ctx context.Context, payload SendMailRequest) error {
	body := map[string]any{"contentType": "Text", "content": payload.BodyText}
	if payload.BodyHTML != "" {
		body = map[string]any{"contentType": "HTML", "content": payload.BodyHTML}
	}

	recipients := make([]map[string]any, 0, len(payload.To))
	for _, addr := range payload.To {
		recipients = append(recipients, map[string]any{
			"emailAddress": map[string]string{"address": addr},
		})
	}

	message := map[string]any{
		"message": map[string]any{
			"subject":      payload.Subject,
			"body":         body,
			"toRecipients": recipients,
		},
		"saveToSentItems": payload.SaveToSentItems,
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	client := g.httpClient
	if client == nil {
		client = g.tokenConf.Client(ctx)
	}

	endpoint := fmt.Sprintf("%s/users/%s/sendMail", g.graphBase, g.sender)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: graph sendMail status %d: %s", shared.ErrMailSendFailed, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	return nil
}
