package handlers

import (
	"log"
	"net/http"

	"ev-dealer-hub/internal/middleware"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

// --- POST: /api/ask ---
func (s *Server) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	// 1. The assistant only exists when GEMINI_API_KEY was configured
	if s.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server missing Gemini API Key"})
		return
	}

	// 2. Run the AI Agent as the caller
	response, err := s.assistant.Ask(c.Request.Context(), middleware.CurrentSession(c), req.Message)
	if err != nil {
		log.Printf("❌ Assistant failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "The assistant could not answer"})
		return
	}

	// 3. Return the Answer
	c.JSON(http.StatusOK, gin.H{"reply": response})
}
