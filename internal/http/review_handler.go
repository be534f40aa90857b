package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rentaloc/internal/service"
)

// ReviewHandler holds dependencies for tenant review endpoints.
type ReviewHandler struct {
	logger     *zap.Logger
	reviewServ *service.ReviewService
}

func NewReviewHandler(logger *zap.Logger, reviewServ *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{logger: logger, reviewServ: reviewServ}
}

type reviewReq struct {
	Message string `json:"message" binding:"required"`
}

// List handles GET /reviews, the public feed. An optional limit query
// caps the result.
func (h *ReviewHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	reviews, err := h.reviewServ.ListPublic(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list reviews failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list reviews"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// Mine handles GET /reviews/mine.
func (h *ReviewHandler) Mine(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	reviews, err := h.reviewServ.ListMine(c.Request.Context(), claims)
	if err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// Create handles POST /properties/:id/reviews.
func (h *ReviewHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	review, err := h.reviewServ.Create(c.Request.Context(), claims, c.Param("id"), req.Message)
	if err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// Update handles PUT /reviews/:id.
func (h *ReviewHandler) Update(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	review, err := h.reviewServ.Update(c.Request.Context(), claims, c.Param("id"), req.Message)
	if err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

// Delete handles DELETE /reviews/:id (soft delete).
func (h *ReviewHandler) Delete(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	if err := h.reviewServ.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *ReviewHandler) respondReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
	case errors.Is(err, service.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
	case errors.Is(err, service.ErrNotTenant), errors.Is(err, service.ErrNotReviewOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyReview):
		c.JSON(http.StatusBadRequest, gin.H{"error": "review message is required"})
	default:
		h.logger.Error("review operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
