package util

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrIllegalArgument        = errors.New("illegal argument")
	ErrAttemptNotFound        = errors.New("attempt not found")
	ErrProgressNotFound       = errors.New("progress not found")
	ErrPathwayNotFound        = errors.New("pathway not found")
	ErrParentNotFound         = errors.New("parent element not found")
	ErrCompetencyNotFound     = errors.New("competency not found")
	ErrUnsupportedPathwayType = errors.New("unsupported pathway type")
	ErrUnsupportedElementType = errors.New("unsupported courseware element type")
)

// IsNotFound reports whether err is one of the not-found faults.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrProgressNotFound) ||
		errors.Is(err, ErrPathwayNotFound) ||
		errors.Is(err, ErrParentNotFound) ||
		errors.Is(err, ErrCompetencyNotFound)
}
