package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/pagegrid-go/internal/application/services"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// ContentTypeHandlers exposes the content-type registry read-only.
type ContentTypeHandlers struct {
	contentTypeService *services.ContentTypeService
	logger             *logging.ChanneledLogger
	perfTracker        *performance.Tracker
}

// NewContentTypeHandlers creates content-type handlers with injected dependencies
func NewContentTypeHandlers(contentTypeService *services.ContentTypeService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ContentTypeHandlers {
	return &ContentTypeHandlers{
		contentTypeService: contentTypeService,
		logger:             logger,
		perfTracker:        perfTracker,
	}
}

// GetContentTypes handles GET /api/v1/content-types
func (h *ContentTypeHandlers) GetContentTypes(c *gin.Context) {
	marker := h.perfTracker.StartOperation("contentType:list", "")
	defer marker.Complete()

	types, err := h.contentTypeService.GetAll()
	if err != nil {
		marker.SetError(err)
		respondError(c, h.logger, "listContentTypes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contentTypes": types, "count": len(types)})
}

// GetContentType handles GET /api/v1/content-types/:type
func (h *ContentTypeHandlers) GetContentType(c *gin.Context) {
	marker := h.perfTracker.StartOperation("contentType:get", "")
	defer marker.Complete()

	ct, err := h.contentTypeService.GetByType(c.Param("type"))
	if err != nil {
		marker.SetError(err)
		respondError(c, h.logger, "getContentType", err)
		return
	}
	c.JSON(http.StatusOK, ct)
}
