package models

import (
	"fmt"
	"strings"
	"time"
)

// Person holds one partner's contact details.
//
// Person B's phone and email are optional; everything else is required for a
// non-demo run.
type Person struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// FormState is the in-progress wizard record.
//
// ID is assigned by the backend at the image-upload step and is immutable for
// the rest of the run. CoupleImageURL and PosterImageURL are write-once: once
// populated they are reused instead of regenerated unless the user explicitly
// retriggers generation. Mutation is whole-record replacement only.
type FormState struct {
	ID             string `json:"id"`
	PersonA        Person `json:"person_a"`
	PersonB        Person `json:"person_b"`
	EventDate      string `json:"event_date"` // DD-MM-YYYY, the format the backend expects
	ImagePath      string `json:"image_path"` // local path of the uploaded photo
	CoupleImageURL string `json:"couple_image_url"`
	PosterImageURL string `json:"poster_image_url"`
	DemoMode       bool   `json:"demo_mode"`
}

// DefaultFormState returns the documented all-empty record.
func DefaultFormState() FormState {
	return FormState{}
}

// Validate checks the fields required before the upload step.
//
// Demo mode relaxes nothing here: the upload itself always needs an image.
// Missing fields are reported together so the user can fix them in one pass.
func (f FormState) Validate() error {
	var missing []string
	if strings.TrimSpace(f.PersonA.Name) == "" {
		missing = append(missing, "name 1")
	}
	if strings.TrimSpace(f.PersonA.Phone) == "" {
		missing = append(missing, "phone 1")
	}
	if strings.TrimSpace(f.PersonA.Email) == "" {
		missing = append(missing, "email 1")
	}
	if strings.TrimSpace(f.PersonB.Name) == "" {
		missing = append(missing, "name 2")
	}
	if f.EventDate == "" {
		missing = append(missing, "date")
	}
	if f.ImagePath == "" {
		missing = append(missing, "image")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// HasNames reports whether both partner names are present.
func (f FormState) HasNames() bool {
	return strings.TrimSpace(f.PersonA.Name) != "" && strings.TrimSpace(f.PersonB.Name) != ""
}

// NormalizeDate converts an ISO date (YYYY-MM-DD) to the DD-MM-YYYY form the
// backend renders onto the poster. Already-normalized or free-form input is
// returned unchanged.
func NormalizeDate(date string) string {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("02-01-2006")
	}
	return date
}

// ArtifactKind enumerates the generated assets.
type ArtifactKind int

const (
	PosterImage ArtifactKind = iota // save-the-date poster image
	PosterVideo                     // animated poster
	Polaroid                        // polaroid-style image + video
	CoupleVideo                     // AI couple video
	FinalVideo                      // assembled result
)

func (k ArtifactKind) String() string {
	switch k {
	case PosterImage:
		return "poster_image"
	case PosterVideo:
		return "poster_video"
	case Polaroid:
		return "polaroid"
	case CoupleVideo:
		return "couple_video"
	case FinalVideo:
		return "final_video"
	default:
		return ""
	}
}

// Artifact tracks one generated asset through its lifecycle.
//
// After a trigger resolves, exactly one of URL or Error is set and Loading is
// false. IsPlaceholder marks a backend fallback asset (degraded success).
type Artifact struct {
	Kind          ArtifactKind
	URL           string
	ImageURL      string // set when the backend produces an image alongside the video
	Loading       bool
	Error         string
	IsPlaceholder bool
}

// Resolved reports whether the artifact reached a terminal state.
func (a Artifact) Resolved() bool {
	return !a.Loading && (a.URL != "" || a.Error != "")
}

// Run records one completed final-video assembly.
type Run struct {
	ID               string
	Sequence         int
	NameA            string
	NameB            string
	EventDate        string
	PosterVideoURL   string
	PolaroidVideoURL string
	CoupleVideoURL   string
	FinalVideoURL    string
	CreatedAt        time.Time
	DeletedAt        *time.Time
}

// Validate checks that a run carries the fields the history table requires.
func (r *Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	if r.FinalVideoURL == "" {
		return fmt.Errorf("final video URL is required")
	}
	return nil
}

// Severity classifies a user-facing notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a user-visible message raised by a terminal transition of
// the mail flow or an assembly step.
type Notification struct {
	Severity Severity
	Message  string
}
