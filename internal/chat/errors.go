package chat

// Error codes for domain errors surfaced to clients.
const (
	CodeRoomNotFound       = "room_not_found"
	CodeBadRequest         = "bad_request"
	CodeDuplicate          = "duplicate"
	CodePersistenceFailure = "persistence_failure"
)

// Error wraps a stable code and a client-safe message. The code is what
// transports key their status mapping on.
type Error struct {
	code    string
	message string
	cause   error
}

func newError(code, message string) *Error {
	return &Error{code: code, message: message}
}

func wrapError(code, message string, cause error) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) Error() string { return e.message }

// Code returns the stable error code.
func (e *Error) Code() string { return e.code }

func (e *Error) Unwrap() error { return e.cause }

var (
	// ErrRoomNotFound is returned when the target room does not exist.
	ErrRoomNotFound = newError(CodeRoomNotFound, "room not found")
	// ErrEmptyContent is returned for a chat send with no content.
	ErrEmptyContent = newError(CodeBadRequest, "content is required")
	// ErrInvalidRoomName is returned for an unusable room name.
	ErrInvalidRoomName = newError(CodeBadRequest, "room name must be 1-64 characters")
)
