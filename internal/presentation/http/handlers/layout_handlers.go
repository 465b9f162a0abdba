package handlers

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/application/services"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// AddRowRequest represents the request body for adding a row
type AddRowRequest struct {
	AfterRowID string `json:"afterRowId"`
}

// AddCellRequest represents the request body for adding a cell. ColSpan
// defaults to 1.
type AddCellRequest struct {
	AfterCellID string `json:"afterCellId"`
	ColSpan     *int   `json:"colSpan"`
}

// ResizeCellRequest represents the request body for resizing a cell
type ResizeCellRequest struct {
	ColSpan *int `json:"colSpan"`
}

// LayoutHandlers contains the grid editing HTTP handlers
type LayoutHandlers struct {
	layoutService *services.LayoutService
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
}

// NewLayoutHandlers creates layout handlers with injected dependencies
func NewLayoutHandlers(layoutService *services.LayoutService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *LayoutHandlers {
	return &LayoutHandlers{
		layoutService: layoutService,
		logger:        logger,
		perfTracker:   perfTracker,
	}
}

// apply runs one layout edit with timing and the shared response shape.
func (h *LayoutHandlers) apply(c *gin.Context, op string, status int, edit func(key string) (*services.MutationResult, error)) {
	key := c.Param("key")
	start := time.Now()
	marker := h.perfTracker.StartOperation("layout:"+op, key)
	defer marker.Complete()

	result, err := edit(key)
	if err != nil {
		marker.SetError(err)
		respondError(c, h.logger, op, err)
		return
	}

	h.logger.WithContext(logging.ChannelContent, c.Request.Context()).Info("Layout request completed",
		"operation", op, "pageKey", key, "duration", time.Since(start))
	c.JSON(status, result)
}

// PostAddRow handles POST /api/v1/pages/:key/rows
func (h *LayoutHandlers) PostAddRow(c *gin.Context) {
	var req AddRowRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadBody(c, err)
			return
		}
	}
	h.apply(c, "addRow", http.StatusCreated, func(key string) (*services.MutationResult, error) {
		return h.layoutService.AddRow(key, req.AfterRowID)
	})
}

// DeleteRow handles DELETE /api/v1/pages/:key/rows/:rowId
func (h *LayoutHandlers) DeleteRow(c *gin.Context) {
	h.apply(c, "removeRow", http.StatusOK, func(key string) (*services.MutationResult, error) {
		return h.layoutService.RemoveRow(key, c.Param("rowId"))
	})
}

// PostAddCell handles POST /api/v1/pages/:key/rows/:rowId/cells
func (h *LayoutHandlers) PostAddCell(c *gin.Context) {
	var req AddCellRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadBody(c, err)
			return
		}
	}
	colSpan := 1
	if req.ColSpan != nil {
		colSpan = *req.ColSpan
	}
	h.apply(c, "addCell", http.StatusCreated, func(key string) (*services.MutationResult, error) {
		return h.layoutService.AddCell(key, c.Param("rowId"), req.AfterCellID, colSpan)
	})
}

// DeleteCell handles DELETE /api/v1/pages/:key/rows/:rowId/cells/:cellId
func (h *LayoutHandlers) DeleteCell(c *gin.Context) {
	h.apply(c, "removeCell", http.StatusOK, func(key string) (*services.MutationResult, error) {
		return h.layoutService.RemoveCell(key, c.Param("rowId"), c.Param("cellId"))
	})
}

// PatchResizeCell handles PATCH /api/v1/pages/:key/rows/:rowId/cells/:cellId
func (h *LayoutHandlers) PatchResizeCell(c *gin.Context) {
	var req ResizeCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}
	if req.ColSpan == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "colSpan is required", "kind": string(layout.KindInvalidArgument)})
		return
	}
	h.apply(c, "resizeCell", http.StatusOK, func(key string) (*services.MutationResult, error) {
		return h.layoutService.ResizeCell(key, c.Param("rowId"), c.Param("cellId"), *req.ColSpan)
	})
}

// PutCellContent handles PUT /api/v1/pages/:key/cells/:cellId/content
func (h *LayoutHandlers) PutCellContent(c *gin.Context) {
	var item layout.ContentItem
	if err := c.ShouldBindJSON(&item); err != nil {
		respondBadBody(c, err)
		return
	}
	h.apply(c, "placeContentItem", http.StatusOK, func(key string) (*services.MutationResult, error) {
		return h.layoutService.PlaceContentItem(key, c.Param("cellId"), item)
	})
}

// DeleteCellContent handles DELETE /api/v1/pages/:key/cells/:cellId/content
func (h *LayoutHandlers) DeleteCellContent(c *gin.Context) {
	h.apply(c, "clearCell", http.StatusOK, func(key string) (*services.MutationResult, error) {
		return h.layoutService.ClearCell(key, c.Param("cellId"))
	})
}

// PostMove handles POST /api/v1/pages/:key/move
func (h *LayoutHandlers) PostMove(c *gin.Context) {
	var params layout.MoveParams
	if err := c.ShouldBindJSON(&params); err != nil {
		respondBadBody(c, err)
		return
	}
	h.apply(c, "moveContentItem", http.StatusOK, func(key string) (*services.MutationResult, error) {
		return h.layoutService.MoveContentItem(key, params)
	})
}

// PutComponent handles PUT /api/v1/pages/:key/components/:itemKey
func (h *LayoutHandlers) PutComponent(c *gin.Context) {
	var item layout.ContentItem
	if err := c.ShouldBindJSON(&item); err != nil {
		respondBadBody(c, err)
		return
	}
	itemKey := c.Param("itemKey")
	if item.Key == "" {
		item.Key = itemKey
	}
	if item.Key != itemKey {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item key does not match path", "kind": string(layout.KindInvalidArgument)})
		return
	}
	h.apply(c, "updateContentItem", http.StatusOK, func(key string) (*services.MutationResult, error) {
		return h.layoutService.UpdateContentItem(key, item)
	})
}

// DeleteComponent handles DELETE /api/v1/pages/:key/components/:itemKey
func (h *LayoutHandlers) DeleteComponent(c *gin.Context) {
	h.apply(c, "deleteContentItem", http.StatusOK, func(key string) (*services.MutationResult, error) {
		return h.layoutService.DeleteContentItem(key, c.Param("itemKey"))
	})
}

// PatchPageInfo handles PATCH /api/v1/pages/:key - name and route edits
func (h *LayoutHandlers) PatchPageInfo(c *gin.Context) {
	var info services.PageInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		respondBadBody(c, err)
		return
	}
	h.apply(c, "updatePageInfo", http.StatusOK, func(key string) (*services.MutationResult, error) {
		return h.layoutService.UpdatePageInfo(key, info)
	})
}
