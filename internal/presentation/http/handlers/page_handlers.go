package handlers

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/application/services"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// CreatePageRequest represents the request body for creating a page
type CreatePageRequest struct {
	Key   string `json:"key" binding:"required"`
	Name  string `json:"name"`
	Route string `json:"route" binding:"required"`
}

// PageHandlers contains all whole-page HTTP handlers
type PageHandlers struct {
	pageService *services.PageService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewPageHandlers creates page handlers with injected dependencies
func NewPageHandlers(pageService *services.PageService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PageHandlers {
	return &PageHandlers{
		pageService: pageService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

func variantParam(c *gin.Context) repositories.Variant {
	if v := c.Query("variant"); v != "" {
		return repositories.Variant(v)
	}
	return repositories.VariantDraft
}

// GetPages handles GET /api/v1/pages
func (h *PageHandlers) GetPages(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("page:list", "")
	defer marker.Complete()

	variant := variantParam(c)
	keys, err := h.pageService.ListKeys(variant)
	if err != nil {
		marker.SetError(err)
		respondError(c, h.logger, "listPages", err)
		return
	}

	h.logger.Content().Info("List pages request completed", "variant", variant, "count", len(keys), "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"variant":  variant,
		"pageKeys": keys,
		"count":    len(keys),
	})
}

// PostCreatePage handles POST /api/v1/pages
func (h *PageHandlers) PostCreatePage(c *gin.Context) {
	var req CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("page:create", req.Key)
	defer marker.Complete()

	name := req.Name
	if name == "" {
		name = req.Key
	}
	rec, err := h.pageService.Create(req.Key, name, req.Route)
	if err != nil {
		marker.SetError(err)
		respondError(c, h.logger, "createPage", err)
		return
	}

	h.logger.Content().Info("Create page request completed", "pageKey", req.Key, "duration", time.Since(start))
	c.JSON(http.StatusCreated, rec)
}

// GetPage handles GET /api/v1/pages/:key
func (h *PageHandlers) GetPage(c *gin.Context) {
	key := c.Param("key")
	marker := h.perfTracker.StartOperation("page:get", key)
	defer marker.Complete()

	rec, err := h.pageService.Get(key, variantParam(c))
	if err != nil {
		marker.SetError(err)
		respondError(c, h.logger, "getPage", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// PutPage handles PUT /api/v1/pages/:key - replaces the draft document
func (h *PageHandlers) PutPage(c *gin.Context) {
	key := c.Param("key")
	var doc layout.PageDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		respondBadBody(c, err)
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("page:save", key)
	defer marker.Complete()

	rec, err := h.pageService.Save(key, &doc)
	if err != nil {
		marker.SetError(err)
		respondError(c, h.logger, "savePage", err)
		return
	}

	h.logger.Content().Info("Save page request completed", "pageKey", key, "rows", len(rec.Document.Layout.Rows), "duration", time.Since(start))
	c.JSON(http.StatusOK, rec)
}

// DeletePage handles DELETE /api/v1/pages/:key
func (h *PageHandlers) DeletePage(c *gin.Context) {
	key := c.Param("key")
	marker := h.perfTracker.StartOperation("page:delete", key)
	defer marker.Complete()

	if err := h.pageService.Delete(key); err != nil {
		marker.SetError(err)
		respondError(c, h.logger, "deletePage", err)
		return
	}

	h.logger.Content().Info("Delete page request completed", "pageKey", key)
	c.JSON(http.StatusOK, gin.H{"deleted": key})
}

// PostPublishPage handles POST /api/v1/pages/:key/publish
func (h *PageHandlers) PostPublishPage(c *gin.Context) {
	key := c.Param("key")
	start := time.Now()
	marker := h.perfTracker.StartOperation("page:publish", key)
	defer marker.Complete()

	rec, err := h.pageService.Publish(key)
	if err != nil {
		marker.SetError(err)
		respondError(c, h.logger, "publishPage", err)
		return
	}

	h.logger.Content().Info("Publish page request completed", "pageKey", key, "duration", time.Since(start))
	c.JSON(http.StatusOK, rec)
}

// PostRepairPage handles POST /api/v1/pages/:key/repair
func (h *PageHandlers) PostRepairPage(c *gin.Context) {
	key := c.Param("key")
	marker := h.perfTracker.StartOperation("page:repair", key)
	defer marker.Complete()

	result, err := h.pageService.Repair(key)
	if err != nil {
		marker.SetError(err)
		respondError(c, h.logger, "repairPage", err)
		return
	}

	marker.AddMetadata("cleared", len(result.Cleared))
	c.JSON(http.StatusOK, result)
}

// GetPublishedPage handles GET /api/v1/published/:key - the public read path
func (h *PageHandlers) GetPublishedPage(c *gin.Context) {
	key := c.Param("key")
	marker := h.perfTracker.StartOperation("page:get_published", key)
	defer marker.Complete()

	rec, err := h.pageService.Get(key, repositories.VariantPublished)
	if err != nil {
		marker.SetError(err)
		respondError(c, h.logger, "getPublishedPage", err)
		return
	}
	c.JSON(http.StatusOK, rec.Document)
}
