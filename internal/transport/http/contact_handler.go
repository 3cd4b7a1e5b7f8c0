package handlers

import (
	"log"
	"net/http"

	"learnplatform/internal/infrastructure/email"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	sender *email.EmailSender
}

func NewContactHandler(sender *email.EmailSender) *ContactHandler {
	return &ContactHandler{sender: sender}
}

// POST /api/send-contact-email
func (h *ContactHandler) Send(c *gin.Context) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	if err := h.sender.SendContactEmail(c, req.Name, req.Email, req.Subject, req.Message); err != nil {
		log.Printf("contact: sending email: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email. Please try again later."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email sent successfully"})
}
