package arrangement

import "errors"

// Action errors. The arrangement is left unchanged whenever one of these is returned.
var (
	ErrWrongState     = errors.New("action is not applicable in the current state")
	ErrForbidden      = errors.New("actor is not allowed to roll back this arrangement")
	ErrInvalidSize    = errors.New("commitment size is not one of the allowed values")
	ErrAlreadyStarted = errors.New("arrangement has already started")
	ErrNotFound       = errors.New("arrangement not found")
	ErrUnknownAction  = errors.New("unknown action")
)
