package ui

import (
	"github.com/labastilla/wedx/internal/models"
	"github.com/labastilla/wedx/internal/tasks"
)

// uploadDoneMsg reports the photo-upload outcome.
type uploadDoneMsg struct {
	form models.FormState
	err  error
}

// progressUpdateMsg carries one engine progress update into the event loop.
type progressUpdateMsg tasks.ProgressUpdate

// generateDoneMsg signals that all triggered generations have settled.
type generateDoneMsg struct {
	err error
}

// assembleDoneMsg reports the final composition outcome.
type assembleDoneMsg struct {
	videoURL string
	err      error
}

// mailDoneMsg reports the email delivery outcome.
type mailDoneMsg struct {
	err error
}

// whatsappDoneMsg reports the WhatsApp notification outcome.
type whatsappDoneMsg struct {
	err error
}
