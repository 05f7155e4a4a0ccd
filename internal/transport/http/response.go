package http

import (
	"errors"
	"net/http"

	"github.com/konect-chat/konect-server/internal/chat"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusForChatError maps a chat domain error onto an HTTP status. Any
// error without a recognized code is a 500; its message is not leaked.
func statusForChatError(err error) (int, string) {
	var domainErr *chat.Error
	if errors.As(err, &domainErr) {
		switch domainErr.Code() {
		case chat.CodeRoomNotFound:
			return http.StatusNotFound, domainErr.Error()
		case chat.CodeBadRequest:
			return http.StatusBadRequest, domainErr.Error()
		case chat.CodeDuplicate:
			return http.StatusConflict, domainErr.Error()
		default:
			return http.StatusInternalServerError, "internal server error"
		}
	}
	return http.StatusInternalServerError, "internal server error"
}
