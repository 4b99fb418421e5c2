// package tasks implements the wizard's generation steps against the backend.
//
// The core abstraction is Engine, which drives the independent artifact
// generations (poster image and video, polaroid, couple video) and the final
// assembly, tracking per-artifact loading/error/url state. Operations emit
// progress updates via channels for non-blocking status reporting to CLI/UI
// layers.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/labastilla/wedx/internal/models"
	"github.com/labastilla/wedx/internal/services"
	"github.com/labastilla/wedx/internal/shared"
	"golang.org/x/time/rate"
)

// FormStore abstracts the persisted form-state slot.
//
// Mutation is whole-record replacement: callers read the current record,
// build the complete next record, and call Replace.
type FormStore interface {
	Load() (models.FormState, error)
	Replace(models.FormState) error
	Reset() error
}

// RunRecorder persists completed final-video runs.
type RunRecorder interface {
	Create(run *models.Run) error
}

// Engine orchestrates artifact generation for one wizard run.
//
// Overlapping triggers for the same artifact are rejected with
// [shared.ErrGenerationInFlight] rather than racing last-write-wins.
// Outbound generation calls share a rate limiter.
type Engine struct {
	gen     *services.GenerationClient
	forms   FormStore
	runs    RunRecorder
	limiter *rate.Limiter

	mu        sync.Mutex
	artifacts map[models.ArtifactKind]*models.Artifact
	autoRun   bool
}

// NewEngine creates an Engine with the provided backend client and stores.
// rateLimit is generation requests per second; zero or negative falls back
// to 2/s.
func NewEngine(gen *services.GenerationClient, forms FormStore, runs RunRecorder, rateLimit float64) *Engine {
	if rateLimit <= 0 {
		rateLimit = 2.0
	}
	return &Engine{
		gen:       gen,
		forms:     forms,
		runs:      runs,
		limiter:   rate.NewLimiter(rate.Limit(rateLimit), 1),
		artifacts: make(map[models.ArtifactKind]*models.Artifact),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// FormState returns the current persisted wizard record.
func (e *Engine) FormState() (models.FormState, error) {
	return e.forms.Load()
}

// ReplaceForm overwrites the persisted wizard record.
func (e *Engine) ReplaceForm(next models.FormState) error {
	return e.forms.Replace(next)
}

// Artifact returns a snapshot of the artifact state for the given kind.
func (e *Engine) Artifact(kind models.ArtifactKind) models.Artifact {
	e.mu.Lock()
	defer e.mu.Unlock()
	if a, ok := e.artifacts[kind]; ok {
		return *a
	}
	return models.Artifact{Kind: kind}
}

// begin transitions an artifact into the loading state.
//
// Rejects the trigger when a request for the same artifact is already in
// flight; the caller surfaces that instead of issuing a duplicate request.
func (e *Engine) begin(kind models.ArtifactKind) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.artifacts[kind]
	if !ok {
		a = &models.Artifact{Kind: kind}
		e.artifacts[kind] = a
	}
	if a.Loading {
		return fmt.Errorf("%w: %s", shared.ErrGenerationInFlight, kind)
	}
	a.Loading = true
	a.Error = ""
	return nil
}

// resolve applies a terminal state to an artifact and returns the snapshot.
// Loading is always cleared; exactly one of url/error ends up set.
func (e *Engine) resolve(kind models.ArtifactKind, url, imageURL, errMsg string, placeholder bool) models.Artifact {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.artifacts[kind]
	if !ok {
		a = &models.Artifact{Kind: kind}
		e.artifacts[kind] = a
	}
	a.Loading = false
	if errMsg != "" {
		a.Error = errMsg
		a.URL = ""
		a.ImageURL = ""
		a.IsPlaceholder = false
	} else {
		a.Error = ""
		a.URL = url
		a.ImageURL = imageURL
		a.IsPlaceholder = placeholder
	}
	return *a
}

// failValidation records a precondition failure without issuing a request.
func (e *Engine) failValidation(kind models.ArtifactKind, sentinel error, msg string) (models.Artifact, error) {
	a := e.resolve(kind, "", "", msg, false)
	return a, fmt.Errorf("%w: %s", sentinel, msg)
}

// Upload sends the couple photo to the backend and stores the assigned run ID
// and hosted image URL in the form record.
//
// The run ID is set exactly once: re-uploads within a run keep the original.
func (e *Engine) Upload(ctx context.Context, progress chan<- ProgressUpdate) (models.FormState, error) {
	form, err := e.forms.Load()
	if err != nil {
		return form, err
	}

	if !form.DemoMode {
		if err := form.Validate(); err != nil {
			return form, fmt.Errorf("%w: %v", shared.ErrMissingField, err)
		}
	}
	if form.ImagePath == "" {
		return form, fmt.Errorf("%w: no image selected", shared.ErrMissingImage)
	}

	e.sendProgress(progress, uploadUpdate(1, 1))

	if err := e.limiter.Wait(ctx); err != nil {
		return form, err
	}

	resp, status, err := e.gen.SaveImage(ctx, form.ImagePath)
	if err != nil {
		return form, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if status < 200 || status >= 300 {
		return form, fmt.Errorf("%w: image upload failed with status %d", shared.ErrAPIRequest, status)
	}
	if resp.ImageURL == "" {
		return form, fmt.Errorf("%w: backend returned no image URL", shared.ErrAPIRequest)
	}

	next := form
	if next.ID == "" {
		next.ID = resp.ID
	}
	next.CoupleImageURL = resp.ImageURL
	if err := e.forms.Replace(next); err != nil {
		return form, err
	}

	e.sendProgress(progress, uploadedUpdate(next.ID, next.CoupleImageURL))
	return next, nil
}

// GeneratePosterImage renders the save-the-date poster image.
//
// The poster image is write-once: a cached URL short-circuits without a
// network call. Regeneration requires clearing the cached URL first via
// RegeneratePosterImage.
func (e *Engine) GeneratePosterImage(ctx context.Context, progress chan<- ProgressUpdate) (models.Artifact, error) {
	form, err := e.forms.Load()
	if err != nil {
		return models.Artifact{Kind: models.PosterImage}, err
	}

	if (!form.HasNames() || form.EventDate == "") && !form.DemoMode {
		return e.failValidation(models.PosterImage, shared.ErrMissingNames, "both names and the event date are required")
	}

	if form.PosterImageURL != "" {
		return e.resolve(models.PosterImage, form.PosterImageURL, form.PosterImageURL, "", false), nil
	}

	if err := e.begin(models.PosterImage); err != nil {
		return e.Artifact(models.PosterImage), err
	}
	e.sendProgress(progress, generatingUpdate(models.PosterImage))

	if err := e.limiter.Wait(ctx); err != nil {
		return e.resolve(models.PosterImage, "", "", err.Error(), false), err
	}

	resp, status, err := e.gen.EditCartelImage(ctx, services.EditCartelRequest{
		ID:       form.ID,
		Name1:    form.PersonA.Name,
		Name2:    form.PersonB.Name,
		Email1:   form.PersonA.Email,
		Email2:   form.PersonB.Email,
		Phone1:   form.PersonA.Phone,
		Phone2:   form.PersonB.Phone,
		Date:     form.EventDate,
		ImageURL: "",
	})
	if err != nil {
		a := e.resolve(models.PosterImage, "", "", "could not generate the poster image", false)
		return a, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if status < 200 || status >= 300 || resp.ImageURL == "" {
		msg := resp.Message
		if msg == "" {
			msg = "could not generate the poster image"
		}
		a := e.resolve(models.PosterImage, "", "", msg, false)
		return a, fmt.Errorf("%w: %s", shared.ErrGenerationFailed, msg)
	}

	// Cache the poster URL in the form record so re-entering the step reuses
	// it instead of regenerating.
	next := form
	next.PosterImageURL = resp.ImageURL
	if err := e.forms.Replace(next); err != nil {
		return e.resolve(models.PosterImage, resp.ImageURL, resp.ImageURL, "", false), err
	}

	a := e.resolve(models.PosterImage, resp.ImageURL, resp.ImageURL, "", false)
	e.sendProgress(progress, generatedUpdate(models.PosterImage, a))
	return a, nil
}

// RegeneratePosterImage clears the cached poster URL and generates a fresh
// one. This is the explicit user-triggered path around the write-once cache.
func (e *Engine) RegeneratePosterImage(ctx context.Context, progress chan<- ProgressUpdate) (models.Artifact, error) {
	form, err := e.forms.Load()
	if err != nil {
		return models.Artifact{Kind: models.PosterImage}, err
	}
	if form.PosterImageURL != "" {
		next := form
		next.PosterImageURL = ""
		if err := e.forms.Replace(next); err != nil {
			return models.Artifact{Kind: models.PosterImage}, err
		}
	}
	return e.GeneratePosterImage(ctx, progress)
}

// GeneratePosterVideo animates the poster image.
//
// In demo mode without a rendered poster image, the names-only endpoint is
// used instead so a demo run still produces a poster video.
func (e *Engine) GeneratePosterVideo(ctx context.Context, progress chan<- ProgressUpdate) (models.Artifact, error) {
	form, err := e.forms.Load()
	if err != nil {
		return models.Artifact{Kind: models.PosterVideo}, err
	}

	useNamesOnly := form.PosterImageURL == "" && form.DemoMode
	if form.PosterImageURL == "" && !useNamesOnly {
		return e.failValidation(models.PosterVideo, shared.ErrMissingArtifact, "the poster image has not been generated")
	}

	if err := e.begin(models.PosterVideo); err != nil {
		return e.Artifact(models.PosterVideo), err
	}
	e.sendProgress(progress, generatingUpdate(models.PosterVideo))

	if err := e.limiter.Wait(ctx); err != nil {
		return e.resolve(models.PosterVideo, "", "", err.Error(), false), err
	}

	var resp *services.GenResponse
	var status int
	if useNamesOnly {
		resp, status, err = e.gen.CreateCartel(ctx, form.PersonA.Name, form.PersonB.Name)
	} else {
		resp, status, err = e.gen.CreateCartelVideo(ctx, services.CartelVideoRequest{
			ID:       form.ID,
			Name1:    form.PersonA.Name,
			Name2:    form.PersonB.Name,
			ImageURL: form.PosterImageURL,
			Demo:     form.DemoMode,
		})
	}
	return e.finishVideo(models.PosterVideo, progress, resp, status, err, "could not generate the poster video")
}

// GeneratePolaroid generates the polaroid image and video.
func (e *Engine) GeneratePolaroid(ctx context.Context, progress chan<- ProgressUpdate) (models.Artifact, error) {
	form, err := e.forms.Load()
	if err != nil {
		return models.Artifact{Kind: models.Polaroid}, err
	}

	if form.EventDate == "" || form.ImagePath == "" {
		return e.failValidation(models.Polaroid, shared.ErrMissingImage, "the event date or the image is missing")
	}

	if err := e.begin(models.Polaroid); err != nil {
		return e.Artifact(models.Polaroid), err
	}
	e.sendProgress(progress, generatingUpdate(models.Polaroid))

	if err := e.limiter.Wait(ctx); err != nil {
		return e.resolve(models.Polaroid, "", "", err.Error(), false), err
	}

	resp, status, err := e.gen.CreatePolaroid(ctx, form.EventDate, form.ImagePath)
	return e.finishVideo(models.Polaroid, progress, resp, status, err, "could not generate the polaroid")
}

// GenerateCoupleVideo generates the AI couple video from the hosted photo.
func (e *Engine) GenerateCoupleVideo(ctx context.Context, progress chan<- ProgressUpdate) (models.Artifact, error) {
	form, err := e.forms.Load()
	if err != nil {
		return models.Artifact{Kind: models.CoupleVideo}, err
	}

	if form.CoupleImageURL == "" {
		return e.failValidation(models.CoupleVideo, shared.ErrMissingImage, "no couple image has been uploaded")
	}

	if err := e.begin(models.CoupleVideo); err != nil {
		return e.Artifact(models.CoupleVideo), err
	}
	e.sendProgress(progress, generatingUpdate(models.CoupleVideo))

	if err := e.limiter.Wait(ctx); err != nil {
		return e.resolve(models.CoupleVideo, "", "", err.Error(), false), err
	}

	resp, status, err := e.gen.CreateCoupleVideo(ctx, services.CoupleVideoRequest{
		ID:       form.ID,
		ImageURL: form.CoupleImageURL,
		Demo:     form.DemoMode,
	})
	return e.finishVideo(models.CoupleVideo, progress, resp, status, err, "could not generate the couple video")
}

// finishVideo applies a video-generation response to an artifact.
//
// Non-2xx responses that still carry a fallback URL are degraded successes
// (isPlaceholder set); everything else fails with the server message or the
// generic fallback.
func (e *Engine) finishVideo(kind models.ArtifactKind, progress chan<- ProgressUpdate, resp *services.GenResponse, status int, err error, generic string) (models.Artifact, error) {
	if err != nil {
		a := e.resolve(kind, "", "", generic, false)
		return a, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if status < 200 || status >= 300 {
		if ph := resp.PlaceholderURL; ph != "" {
			a := e.resolve(kind, e.gen.ResolveMediaURL(ph), "", "", true)
			e.sendProgress(progress, generatedUpdate(kind, a))
			return a, nil
		}
		if resp.VideoURL != "" {
			a := e.resolve(kind, e.gen.ResolveMediaURL(resp.VideoURL), "", "", true)
			e.sendProgress(progress, generatedUpdate(kind, a))
			return a, nil
		}
		msg := resp.Message
		if msg == "" {
			msg = generic
		}
		a := e.resolve(kind, "", "", msg, false)
		return a, fmt.Errorf("%w: %s", shared.ErrGenerationFailed, msg)
	}

	if resp.VideoURL == "" {
		msg := resp.Message
		if msg == "" {
			msg = generic
		}
		a := e.resolve(kind, "", "", msg, false)
		return a, fmt.Errorf("%w: %s", shared.ErrGenerationFailed, msg)
	}

	imageURL := ""
	if resp.ImageURL != "" {
		imageURL = e.gen.ResolveMediaURL(resp.ImageURL)
	}
	a := e.resolve(kind, e.gen.ResolveMediaURL(resp.VideoURL), imageURL, "", false)
	e.sendProgress(progress, generatedUpdate(kind, a))
	return a, nil
}

// GenerateAll triggers every artifact whose inputs are available.
//
// The poster image feeds the poster video, so those two run as one sequence;
// the polaroid and couple video run independently alongside. The automatic
// trigger fires at most once per run instance; later calls are no-ops so
// repeated step initialization cannot double-fire.
func (e *Engine) GenerateAll(ctx context.Context, progress chan<- ProgressUpdate) error {
	e.mu.Lock()
	if e.autoRun {
		e.mu.Unlock()
		return nil
	}
	e.autoRun = true
	e.mu.Unlock()

	form, err := e.forms.Load()
	if err != nil {
		return err
	}

	var wg sync.WaitGroup

	if (form.HasNames() && form.EventDate != "") || form.DemoMode {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.GeneratePosterImage(ctx, progress); err == nil || form.DemoMode {
				e.GeneratePosterVideo(ctx, progress)
			}
		}()
	}

	if form.EventDate != "" && form.ImagePath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.GeneratePolaroid(ctx, progress)
		}()
	}

	if form.CoupleImageURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.GenerateCoupleVideo(ctx, progress)
		}()
	}

	wg.Wait()
	return nil
}

// AssembleFinal submits the generated artifacts for composition.
//
// Fails fast with a fixed validation message when any prerequisite URL is
// missing; no request is issued in that case. On success the resolved
// absolute video URL is returned and the run is recorded in the history.
func (e *Engine) AssembleFinal(ctx context.Context, progress chan<- ProgressUpdate) (string, error) {
	poster := e.Artifact(models.PosterVideo)
	polaroid := e.Artifact(models.Polaroid)
	couple := e.Artifact(models.CoupleVideo)

	if poster.URL == "" || polaroid.URL == "" || couple.URL == "" {
		msg := "generate the poster, polaroid and couple videos first"
		e.resolve(models.FinalVideo, "", "", msg, false)
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArtifact, msg)
	}

	form, err := e.forms.Load()
	if err != nil {
		return "", err
	}

	if err := e.begin(models.FinalVideo); err != nil {
		return "", err
	}
	e.sendProgress(progress, assembleUpdate(1, 1))

	if err := e.limiter.Wait(ctx); err != nil {
		e.resolve(models.FinalVideo, "", "", err.Error(), false)
		return "", err
	}

	resp, status, err := e.gen.GenerateFinalVideo(ctx, services.FinalVideoRequest{
		ID:            form.ID,
		Name1:         form.PersonA.Name,
		Name2:         form.PersonB.Name,
		Email1:        form.PersonA.Email,
		Email2:        form.PersonB.Email,
		CartelVideo:   e.gen.RelativeMediaPath(poster.URL),
		PolaroidVideo: e.gen.RelativeMediaPath(polaroid.URL),
		ParejaVideo:   e.gen.RelativeMediaPath(couple.URL),
	})
	if err != nil {
		e.resolve(models.FinalVideo, "", "", "could not reach the server, please try again", false)
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.Status != "success" || status < 200 || status >= 300 {
		msg := resp.Message
		if msg == "" {
			msg = "could not generate the final video"
		}
		e.resolve(models.FinalVideo, "", "", msg, false)
		return "", fmt.Errorf("%w: %s", shared.ErrAssemblyFailed, msg)
	}

	videoURL := resp.VideoURL
	if videoURL == "" {
		videoURL = resp.VideoPath
	}
	videoURL = e.gen.ResolveMediaURL(videoURL)

	e.resolve(models.FinalVideo, videoURL, "", "", false)
	e.sendProgress(progress, assembledUpdate(videoURL))

	if e.runs != nil {
		run := &models.Run{
			ID:               form.ID,
			NameA:            form.PersonA.Name,
			NameB:            form.PersonB.Name,
			EventDate:        form.EventDate,
			PosterVideoURL:   poster.URL,
			PolaroidVideoURL: polaroid.URL,
			CoupleVideoURL:   couple.URL,
			FinalVideoURL:    videoURL,
		}
		if run.ID == "" {
			run.ID = shared.GenerateID()
		}
		if err := e.runs.Create(run); err != nil {
			// The video exists regardless; history is advisory.
			e.sendProgress(progress, ProgressUpdate{
				Phase:   AssembleFinal,
				Step:    1,
				Total:   1,
				Message: fmt.Sprintf("warning: could not record run history: %v", err),
			})
		}
	}

	return videoURL, nil
}

// NotifyWhatsApp sends the WhatsApp template to person A's phone.
func (e *Engine) NotifyWhatsApp(ctx context.Context) error {
	form, err := e.forms.Load()
	if err != nil {
		return err
	}
	if form.PersonA.Phone == "" {
		return fmt.Errorf("%w: person A has no phone number", shared.ErrMissingField)
	}
	return e.gen.SendWhatsApp(ctx, form.PersonA.Phone)
}

// ResetRun clears the artifact states, re-arms the automatic trigger, and
// resets the persisted form to its defaults. This is the explicit
// start-new-video action; nothing else ever moves the wizard backward.
func (e *Engine) ResetRun() error {
	e.mu.Lock()
	e.artifacts = make(map[models.ArtifactKind]*models.Artifact)
	e.autoRun = false
	e.mu.Unlock()
	return e.forms.Reset()
}
