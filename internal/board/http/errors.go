package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/consultboard/internal/board/service"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
	"github.com/aussiebroadwan/consultboard/pkg/httpx"
	"github.com/aussiebroadwan/consultboard/pkg/slogx"
)

// writeServiceError maps service errors onto the API error codes. Anything
// unexpected is logged and reported as server_error with the given message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, boardsdk.ErrorCodeValidation, err.Error())
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, boardsdk.ErrorCodeNotFound, err.Error())
	default:
		slogx.FromContext(r.Context()).Error(msg, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, boardsdk.ErrorCodeServerError, msg)
	}
}

func writeBadJSON(w http.ResponseWriter, err error) {
	httpx.WriteError(w, http.StatusBadRequest, boardsdk.ErrorCodeValidation, err.Error())
}
