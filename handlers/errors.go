package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-api/service"
	"library-api/statemachine"
)

var statusByKind = map[service.Kind]int{
	service.KindInvalidArgument:   http.StatusBadRequest,
	service.KindValidation:        http.StatusBadRequest,
	service.KindNotFound:          http.StatusNotFound,
	service.KindNotAuthenticated:  http.StatusUnauthorized,
	service.KindNotAuthorized:     http.StatusForbidden,
	service.KindConflict:          http.StatusConflict,
	service.KindInvalidTransition: http.StatusUnprocessableEntity,
	service.KindUpdateFailed:      http.StatusInternalServerError,
	service.KindStore:             http.StatusInternalServerError,
}

func statusFor(err error) int {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		if status, ok := statusByKind[svcErr.Kind]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": message}. Validation failures add a
// fields map and refused transitions add the states that are allowed.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
	}

	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	body := gin.H{"error": svcErr.Message}
	if svcErr.Kind == service.KindValidation {
		body["fields"] = svcErr.Fields
	}
	var transitionErr *statemachine.TransitionError
	if errors.As(err, &transitionErr) {
		body["current_status"] = transitionErr.From
		body["requested"] = transitionErr.To
		body["reason"] = transitionErr.Error()
		body["valid_next_states"] = statemachine.ValidTransitionsFrom(transitionErr.From)
	}
	c.JSON(status, body)
}
