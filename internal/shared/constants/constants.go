package constants

const (
	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderAccept        = "Accept"

	// Content Types
	ContentTypeJSON = "application/json"

	// Persisted session keys. Both are written and cleared together.
	StorageKeyToken = "token"
	StorageKeyUser  = "user"

	// Placeholder shown in table cells for empty values
	EmptyCell = "—"

	// IDField is the identifier accessor on every row and the update marker in payloads
	IDField = "_id"

	// DeleteFlagField marks a POST as a delete when the DELETE verb is rejected
	DeleteFlagField = "__delete"

	// Default client settings
	DefaultRequestTimeoutSeconds = 30
	DefaultResendCooldownSeconds = 30
)
