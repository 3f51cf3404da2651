package services

import "errors"

// ErrorKind classifies failures raised by the services.
type ErrorKind string

const (
	KindValidation       ErrorKind = "ValidationError"
	KindNotFound         ErrorKind = "NotFound"
	KindInvalidOperation ErrorKind = "InvalidOperation"
	KindBackend          ErrorKind = "BackendError"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrParentNotFound     = errors.New("parent task not found")
	ErrTargetNotFound     = errors.New("target task not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrInvalidPriority    = errors.New("priority must be one of low, medium, high")
	ErrInvalidStatus      = errors.New("status must be one of all, pending, completed")
	ErrInvalidOrder       = errors.New("order must be one of priority, updated_desc, created_desc, created_asc, position")
	ErrInvalidLevelRange  = errors.New("invalid level range")
	ErrInvalidPlacement   = errors.New("placement must be one of before, after, into")
	ErrSearchTermRequired = errors.New("search term is required")
	ErrNoExternalRefs     = errors.New("at least one external reference is required")
	ErrInvalidMailRef     = errors.New("unrecognised mail reference")
	ErrMoveIntoSelf       = errors.New("a task cannot be its own parent")
	ErrMoveIntoDescendant = errors.New("a task cannot be moved under its own descendant")
	ErrTreeTooDeep        = errors.New("task tree exceeds the maximum depth")
)

var errorKinds = map[ErrorKind][]error{
	KindValidation: {
		ErrTitleRequired,
		ErrInvalidPriority,
		ErrInvalidStatus,
		ErrInvalidOrder,
		ErrInvalidLevelRange,
		ErrInvalidPlacement,
		ErrSearchTermRequired,
		ErrNoExternalRefs,
		ErrInvalidMailRef,
		ErrPasswordTooShort,
		ErrAINoSubtasks,
		ErrProviderRequired,
		ErrAccessTokenRequired,
	},
	KindNotFound: {
		ErrTaskNotFound,
		ErrParentNotFound,
		ErrTargetNotFound,
		ErrProviderNotConnected,
	},
	KindInvalidOperation: {
		ErrMoveIntoSelf,
		ErrMoveIntoDescendant,
		ErrTreeTooDeep,
		ErrAIServiceNotConfigured,
		ErrTooManySubtasks,
	},
}

// KindOf classifies err. Anything not raised by the services themselves is a
// backend failure.
func KindOf(err error) ErrorKind {
	for kind, sentinels := range errorKinds {
		for _, sentinel := range sentinels {
			if errors.Is(err, sentinel) {
				return kind
			}
		}
	}
	return KindBackend
}
