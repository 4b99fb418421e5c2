package tasks

import (
	"fmt"

	"github.com/labastilla/wedx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	UploadImage Phase = iota
	GeneratePoster
	GeneratePosterVideo
	GeneratePolaroid
	GenerateCouple
	AssembleFinal
)

func (p Phase) String() string {
	switch p {
	case UploadImage:
		return "upload_image"
	case GeneratePoster:
		return "generate_poster"
	case GeneratePosterVideo:
		return "generate_poster_video"
	case GeneratePolaroid:
		return "generate_polaroid"
	case GenerateCouple:
		return "generate_couple"
	case AssembleFinal:
		return "assemble_final"
	default:
		return ""
	}
}

// phaseForKind maps an artifact to the phase its generation reports under.
func phaseForKind(kind models.ArtifactKind) Phase {
	switch kind {
	case models.PosterImage:
		return GeneratePoster
	case models.PosterVideo:
		return GeneratePosterVideo
	case models.Polaroid:
		return GeneratePolaroid
	case models.CoupleVideo:
		return GenerateCouple
	default:
		return AssembleFinal
	}
}

func uploadUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadImage,
		Step:    step,
		Total:   total,
		Message: "Uploading couple photo...",
	}
}

func uploadedUpdate(id, imageURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadImage,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Photo uploaded (run %s)", id),
		Data:    imageURL,
	}
}

func generatingUpdate(kind models.ArtifactKind) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phaseForKind(kind),
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Generating %s...", kind),
	}
}

func generatedUpdate(kind models.ArtifactKind, artifact models.Artifact) ProgressUpdate {
	msg := fmt.Sprintf("Generated %s", kind)
	if artifact.IsPlaceholder {
		msg = fmt.Sprintf("Generated %s (placeholder)", kind)
	}
	return ProgressUpdate{
		Phase:   phaseForKind(kind),
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    artifact,
	}
}

func assembleUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssembleFinal,
		Step:    step,
		Total:   total,
		Message: "Composing final video...",
	}
}

func assembledUpdate(videoURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssembleFinal,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Final video ready: %s", videoURL),
		Data:    videoURL,
	}
}
