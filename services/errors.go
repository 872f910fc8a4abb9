package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map these onto HTTP
// status codes; anything not listed here surfaces as an internal error.
var (
	ErrEntryNotFound      = errors.New("entry not found")
	ErrBracketNotFound    = errors.New("bracket not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrCompetitorNotFound = errors.New("competitor not found")
	ErrOfficialNotFound   = errors.New("official not found")
	ErrContingentNotFound = errors.New("contingent not found")
	ErrCategoryNotFound   = errors.New("category not found")

	ErrValidationFailed = errors.New("validation failed")
	ErrNameConflict     = errors.New("name already exists")
	ErrResourceInUse    = errors.New("resource is referenced by other records")

	ErrRosterTooSmall          = errors.New("at least 2 registered competitors are required")
	ErrRegistrationConflict    = errors.New("competitor is already registered for this entry")
	ErrRegistrationNotFound    = errors.New("competitor is not registered for this entry")
	ErrEntryFormatMismatch     = errors.New("requested format does not match the entry's format")
	ErrInvalidBracketStatus    = errors.New("invalid bracket status")
	ErrMatchAlreadyApproved    = errors.New("match is already approved")
	ErrByeApprovalNotSupported = errors.New("bye matches cannot be approved or scheduled")
	ErrMatchSlotsNotFilled     = errors.New("match slots are not filled yet")
	ErrMatchNotApproved        = errors.New("match must be approved before recording a result")
	ErrInvalidWinner           = errors.New("winner must be one of the match's competitors")
	ErrMatchAlreadyFinished    = errors.New("match is already finished with a different outcome")
	ErrInvalidMatchStatus      = errors.New("invalid match status")
	ErrScoreNotIntegral        = errors.New("combat scores must be whole numbers")

	// ErrBracketCorrupted signals an internal consistency failure in stored
	// bracket structure, not a caller mistake.
	ErrBracketCorrupted = errors.New("bracket structure is corrupted")

	ErrUploaderNotConfigured = errors.New("file storage is not configured")
	ErrInvalidFileType       = errors.New("unsupported file content type")
)
