package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rentaloc/internal/domain"
	"rentaloc/internal/service"
)

// PropertyHandler holds dependencies for listing endpoints.
type PropertyHandler struct {
	logger    *zap.Logger
	propServ  *service.PropertyService
	mediaRoot string
}

func NewPropertyHandler(logger *zap.Logger, propServ *service.PropertyService, mediaRoot string) *PropertyHandler {
	return &PropertyHandler{
		logger:    logger,
		propServ:  propServ,
		mediaRoot: mediaRoot,
	}
}

type propertyReq struct {
	Category      string `json:"category"`
	Location      string `json:"location" binding:"required"`
	PricePerMonth int64  `json:"price_per_month" binding:"required,gt=0"`
	Description   string `json:"description" binding:"required"`
	ContactPhone  string `json:"contact_phone"`
	Available     bool   `json:"available"`
}

func (r propertyReq) input() service.PropertyInput {
	return service.PropertyInput{
		Category:      r.Category,
		Location:      r.Location,
		PricePerMonth: r.PricePerMonth,
		Description:   r.Description,
		ContactPhone:  r.ContactPhone,
		Available:     r.Available,
	}
}

// List handles GET /properties with optional location, category and
// price_range query filters.
func (h *PropertyHandler) List(c *gin.Context) {
	filter := domain.PropertyFilter{
		Location:  c.Query("location"),
		Category:  c.Query("category"),
		PriceBand: c.Query("price_range"),
	}
	props, err := h.propServ.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list properties failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list properties"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props})
}

// Get handles GET /properties/:id. Contact details are only included
// for authenticated callers.
func (h *PropertyHandler) Get(c *gin.Context) {
	_, authenticated := GetAuthClaims(c)
	prop, err := h.propServ.Get(c.Request.Context(), c.Param("id"), authenticated)
	if err != nil {
		h.respondPropertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": prop})
}

// Create handles POST /properties.
func (h *PropertyHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	var req propertyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	prop, err := h.propServ.Create(c.Request.Context(), claims, req.input())
	if err != nil {
		h.respondPropertyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"property": prop})
}

// Update handles PUT /properties/:id.
func (h *PropertyHandler) Update(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	var req propertyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	prop, err := h.propServ.Update(c.Request.Context(), claims, c.Param("id"), req.input())
	if err != nil {
		h.respondPropertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": prop})
}

// Delete handles DELETE /properties/:id (soft delete).
func (h *PropertyHandler) Delete(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	if err := h.propServ.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		h.respondPropertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Mine handles GET /properties/mine, the owner dashboard listing.
func (h *PropertyHandler) Mine(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	props, err := h.propServ.ListByOwner(c.Request.Context(), claims)
	if err != nil {
		h.respondPropertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props})
}

// UploadPhoto handles POST /properties/:id/photos (multipart).
func (h *PropertyHandler) UploadPhoto(c *gin.Context) {
	h.upload(c, "photo", func(claims service.Claims, propertyID, filename string) (string, any, error) {
		photo, err := h.propServ.AttachPhoto(c.Request.Context(), claims, propertyID, filename)
		return photo.Path, gin.H{"photo": photo}, err
	})
}

// UploadVideo handles POST /properties/:id/videos (multipart).
func (h *PropertyHandler) UploadVideo(c *gin.Context) {
	h.upload(c, "video", func(claims service.Claims, propertyID, filename string) (string, any, error) {
		video, err := h.propServ.AttachVideo(c.Request.Context(), claims, propertyID, filename)
		return video.Path, gin.H{"video": video}, err
	})
}

func (h *PropertyHandler) upload(c *gin.Context, field string, attach func(service.Claims, string, string) (string, any, error)) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	file, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": field + " file is required"})
		return
	}

	path, resp, err := attach(claims, c.Param("id"), file.Filename)
	if err != nil {
		h.respondPropertyError(c, err)
		return
	}

	dst := filepath.Join(h.mediaRoot, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		h.logger.Error("media dir create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store file"})
		return
	}
	if err := c.SaveUploadedFile(file, dst); err != nil {
		h.logger.Error("file save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store file"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Categories handles GET /categories.
func (h *PropertyHandler) Categories(c *gin.Context) {
	cats, err := h.propServ.Categories(c.Request.Context())
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *PropertyHandler) respondPropertyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
	case errors.Is(err, service.ErrNotApprovedOwner), errors.Is(err, service.ErrNotPropertyOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
	default:
		h.logger.Error("property operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
