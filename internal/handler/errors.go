package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/assessment-backend/internal/response"
	"github.com/stemsi/assessment-backend/internal/service"
	"github.com/stemsi/assessment-backend/internal/validator"
)

// failFromService maps a service error onto the response envelope. Storage
// and unexpected errors are logged and reported without details.
func failFromService(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// failBind reports a body that could not be decoded or did not validate.
func failBind(c *gin.Context, err error) {
	if validator.IsSyntaxError(err) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
}

// wsErrorMessage is the client-facing text for a service error on a WebSocket.
func wsErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrValidation):
		return err.Error()
	case errors.Is(err, service.ErrUnauthenticated):
		return response.GetMessage(response.ErrTokenRequired)
	case errors.Is(err, service.ErrNotFound):
		return response.GetMessage(response.ErrNotFound)
	default:
		return response.GetMessage(response.ErrInternal)
	}
}
