package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"market-chat-service/internal/models"
	"market-chat-service/internal/repositories"
)

// StatementHandler exposes read-only passthroughs to the statement and
// response stores for chat clients resolving linked records.
type StatementHandler struct {
	statements repositories.StatementRepository
	responses  repositories.ResponseRepository
}

// NewStatementHandler builds a StatementHandler.
func NewStatementHandler(statements repositories.StatementRepository, responses repositories.ResponseRepository) *StatementHandler {
	return &StatementHandler{statements: statements, responses: responses}
}

// GetStatement returns a statement summary by id.
func (h *StatementHandler) GetStatement(c *gin.Context) {
	st, err := h.statements.Get(c.Request.Context(), c.Param("statement_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrStatementNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "statement not found"})
		return
	}

	c.JSON(http.StatusOK, st.Summary())
}

// GetResponse returns a single bid summary by id.
func (h *StatementHandler) GetResponse(c *gin.Context) {
	resp, err := h.responses.Get(c.Request.Context(), c.Param("response_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrResponseNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "response not found"})
		return
	}

	c.JSON(http.StatusOK, resp.Summary())
}

// ListStatementResponses returns the bids on a statement, newest first.
func (h *StatementHandler) ListStatementResponses(c *gin.Context) {
	statementID := c.Param("statement_id")

	if _, err := h.statements.Get(c.Request.Context(), statementID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrStatementNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "statement not found"})
		return
	}

	responses, err := h.responses.ListForStatement(c.Request.Context(), statementID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load responses"})
		return
	}

	summaries := make([]models.ResponseSummary, 0, len(responses))
	for _, resp := range responses {
		summaries = append(summaries, resp.Summary())
	}

	c.JSON(http.StatusOK, gin.H{"responses": summaries})
}
