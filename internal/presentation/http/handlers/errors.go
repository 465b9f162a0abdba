// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

const kindInternal = "internal"

// statusForError maps the layout error taxonomy onto HTTP statuses.
func statusForError(err error) (int, string) {
	kind := layout.KindOf(err)
	switch kind {
	case layout.KindNotFound:
		return http.StatusNotFound, string(kind)
	case layout.KindInvalidArgument:
		return http.StatusBadRequest, string(kind)
	case layout.KindConflict, layout.KindInvariantViolation:
		return http.StatusConflict, string(kind)
	case layout.KindValidation:
		return http.StatusUnprocessableEntity, string(kind)
	}
	return http.StatusInternalServerError, kindInternal
}

// respondError writes {"error", "kind"} and logs server-side failures.
func respondError(c *gin.Context, logger *logging.ChanneledLogger, op string, err error) {
	status, kind := statusForError(err)
	log := logger.WithContext(logging.ChannelContent, c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "operation", op, "path", c.Request.URL.Path, "error", err.Error())
		c.JSON(status, gin.H{"error": "internal server error", "kind": kind})
		return
	}
	log.Debug("Request rejected", "operation", op, "path", c.Request.URL.Path, "kind", kind, "error", err.Error())
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}

// respondBadBody reports an unparseable request body.
func respondBadBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid request body",
		"kind":    string(layout.KindInvalidArgument),
		"details": err.Error(),
	})
}
