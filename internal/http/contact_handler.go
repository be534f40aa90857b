package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rentaloc/internal/service"
)

// ContactHandler exposes the public contact form.
type ContactHandler struct {
	logger      *zap.Logger
	contactServ *service.ContactService
}

func NewContactHandler(logger *zap.Logger, contactServ *service.ContactService) *ContactHandler {
	return &ContactHandler{logger: logger, contactServ: contactServ}
}

type contactReq struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// Submit handles POST /contact.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	msg, err := h.contactServ.Submit(c.Request.Context(), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidContact) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and message are required"})
			return
		}
		h.logger.Error("contact submit failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit message"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": msg.ID, "status": "received"})
}
