package constants

const (
	// ContextKeyUsername is the session and gin context key of the authenticated user.
	ContextKeyUsername = "username"

	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "column_task_session"

	// SessionMaxAge is the session lifetime in seconds (30 days).
	SessionMaxAge = 86400 * 30

	// MinPasswordLength applies to passwords hashed through the CLI.
	MinPasswordLength = 8
)

const (
	// DefaultMaxTreeDepth bounds full-subtree reads and ancestor walks.
	DefaultMaxTreeDepth = 64

	// FirstPosition is the position_order of the first task in a sibling group.
	FirstPosition = 1

	// MaxGeneratedSubtasks caps the number of AI suggested subtasks.
	MaxGeneratedSubtasks = 12

	// MaxChildrenForSuggestions is the child count above which suggestions are not inserted.
	MaxChildrenForSuggestions = 100
)

// ProviderGoogle is the only external provider the token store is used with today.
const ProviderGoogle = "google"
