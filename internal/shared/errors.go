package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Form validation errors
	ErrMissingField    = fmt.Errorf("missing required field")
	ErrMissingNames    = fmt.Errorf("both names are required")
	ErrMissingDate     = fmt.Errorf("event date is required")
	ErrMissingImage    = fmt.Errorf("no couple image available")
	ErrMissingArtifact = fmt.Errorf("prerequisite artifact not generated")

	// Generation errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrGenerationFailed   = fmt.Errorf("generation failed")
	ErrGenerationInFlight = fmt.Errorf("generation already in progress")
	ErrAssemblyFailed     = fmt.Errorf("final video assembly failed")

	// Mail / delegated auth errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrAuthTimeout      = fmt.Errorf("authentication timed out")
	ErrMailSendFailed   = fmt.Errorf("mail send failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
