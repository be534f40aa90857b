package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rentaloc/internal/service"
)

// AdminHandler exposes moderation endpoints. All routes require the
// admin role.
type AdminHandler struct {
	logger      *zap.Logger
	accountServ *service.AccountService
}

func NewAdminHandler(logger *zap.Logger, accountServ *service.AccountService) *AdminHandler {
	return &AdminHandler{logger: logger, accountServ: accountServ}
}

// ApproveOwner handles POST /admin/users/:id/approve.
func (h *AdminHandler) ApproveOwner(c *gin.Context) {
	user, err := h.accountServ.ApproveOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeactivateUser handles DELETE /admin/users/:id.
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	if err := h.accountServ.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

func (h *AdminHandler) respondAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
	case errors.Is(err, service.ErrNotOwnerAccount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "account is not an owner"})
	default:
		h.logger.Error("admin operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
