package tasks

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labastilla/wedx/internal/models"
	"github.com/labastilla/wedx/internal/server"
	"github.com/labastilla/wedx/internal/services"
	"github.com/labastilla/wedx/internal/shared"
)

// MailState is the phase of the delegated-auth mail flow.
type MailState int

const (
	Unauthenticated MailState = iota
	PopupOpened
	WaitingForMessage
	Authenticated
	Sending
	Sent
	Failed
)

func (s MailState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case PopupOpened:
		return "popup opened"
	case WaitingForMessage:
		return "waiting for login"
	case Authenticated:
		return "authenticated"
	case Sending:
		return "sending"
	case Sent:
		return "sent"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MailSender abstracts the delegated-session mail endpoint.
type MailSender interface {
	Me(ctx context.Context) (bool, error)
	LoginURL(relayOrigin string) string
	Origin() string
	Send(ctx context.Context, req services.SendMailRequest) error
}

// MailFlow runs the login-then-send sequence for delivering the final video.
//
// When no delegated session exists, a browser window is opened against the
// backend's login route with a local relay origin; the backend's completion
// page notifies the relay, and the flow re-checks the session before
// sending. The relay server is torn down on every exit path.
type MailFlow struct {
	mail   MailSender
	host   string
	port   int
	logger *log.Logger

	// Injection points for tests.
	openBrowser func(url string) error
	authTimeout time.Duration
	settleDelay time.Duration

	mu            sync.Mutex
	state         MailState
	notifications []models.Notification
}

// NewMailFlow creates a MailFlow that binds its relay on host:port. A port of
// zero picks an ephemeral one.
func NewMailFlow(mail MailSender, host string, port int, logger *log.Logger) *MailFlow {
	return &MailFlow{
		mail:        mail,
		host:        host,
		port:        port,
		logger:      logger,
		openBrowser: shared.OpenBrowser,
		authTimeout: 120 * time.Second,
		settleDelay: 500 * time.Millisecond,
		state:       Unauthenticated,
	}
}

// State returns the current flow phase.
func (f *MailFlow) State() MailState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Notifications returns the terminal-transition notifications accumulated so
// far, oldest first.
func (f *MailFlow) Notifications() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}

func (f *MailFlow) setState(s MailState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *MailFlow) notify(severity models.Severity, message string) {
	f.mu.Lock()
	f.notifications = append(f.notifications, models.Notification{
		Severity: severity,
		Message:  message,
	})
	f.mu.Unlock()
}

// EnsureSession makes sure a delegated mail session exists, running the
// browser login flow when necessary.
func (f *MailFlow) EnsureSession(ctx context.Context) error {
	authed, err := f.mail.Me(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if authed {
		f.setState(Authenticated)
		return nil
	}
	return f.login(ctx)
}

// login opens the backend login page and waits for the completion relay.
func (f *MailFlow) login(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", f.host, f.port))
	if err != nil {
		return fmt.Errorf("%w: relay listen: %v", shared.ErrAuthFailed, err)
	}
	origin := fmt.Sprintf("http://%s", listener.Addr().String())

	// The completion page lives on the backend, so that's the only origin
	// allowed to resolve the wait.
	relay := server.NewAuthRelayHandler(f.mail.Origin())

	router := server.NewBasicRouter()
	router.Handler(relay)

	srv := &http.Server{Handler: router}
	go srv.Serve(listener)
	defer srv.Close()

	loginURL := f.mail.LoginURL(origin)
	f.setState(PopupOpened)
	if err := f.openBrowser(loginURL); err != nil {
		f.setState(Failed)
		f.notify(models.SeverityError, "could not open the browser for login")
		return fmt.Errorf("%w: open browser: %v", shared.ErrAuthFailed, err)
	}

	if f.logger != nil {
		f.logger.Info("waiting for mail login", "url", loginURL, "relay", origin)
	}
	f.setState(WaitingForMessage)

	select {
	case result := <-relay.Result():
		if !result.OK {
			f.setState(Failed)
			f.notify(models.SeverityError, "login was not completed")
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
		}
	case <-time.After(f.authTimeout):
		f.setState(Failed)
		f.notify(models.SeverityError, "login timed out")
		return fmt.Errorf("%w: no login completion within %s", shared.ErrAuthTimeout, f.authTimeout)
	case <-ctx.Done():
		f.setState(Failed)
		return ctx.Err()
	}

	// Give the backend a moment to persist the session cookie before the
	// re-check, matching the completion page's own redirect delay.
	select {
	case <-time.After(f.settleDelay):
	case <-ctx.Done():
		f.setState(Failed)
		return ctx.Err()
	}

	authed, err := f.mail.Me(ctx)
	if err != nil {
		f.setState(Failed)
		f.notify(models.SeverityError, "could not verify the mail session")
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !authed {
		f.setState(Failed)
		f.notify(models.SeverityError, "could not authenticate")
		return fmt.Errorf("%w: session not established after login", shared.ErrAuthFailed)
	}

	f.setState(Authenticated)
	f.notify(models.SeveritySuccess, "mail session established")
	return nil
}

// SendVideo delivers the final video link to the recipients, logging in first
// when no session exists.
func (f *MailFlow) SendVideo(ctx context.Context, to []string, subject, message, videoURL string) error {
	if len(to) == 0 {
		return fmt.Errorf("%w: no recipients", shared.ErrInvalidInput)
	}
	if videoURL == "" {
		return fmt.Errorf("%w: the final video has not been generated", shared.ErrMissingArtifact)
	}

	if err := f.EnsureSession(ctx); err != nil {
		return err
	}

	f.setState(Sending)

	bodyHTML := fmt.Sprintf(
		"<p>%s</p><p><a href=%q>%s</a></p>",
		message, videoURL, videoURL,
	)
	bodyText := fmt.Sprintf("%s\n\n%s", message, videoURL)

	err := f.mail.Send(ctx, services.SendMailRequest{
		To:              to,
		Subject:         subject,
		BodyHTML:        bodyHTML,
		BodyText:        bodyText,
		SaveToSentItems: true,
	})
	if err != nil {
		f.setState(Failed)
		f.notify(models.SeverityError, fmt.Sprintf("could not send the email: %v", err))
		return fmt.Errorf("%w: %v", shared.ErrMailSendFailed, err)
	}

	f.setState(Sent)
	f.notify(models.SeveritySuccess, fmt.Sprintf("video sent to %d recipient(s)", len(to)))
	return nil
}
