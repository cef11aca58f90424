package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/repository"
)

// SuggestionHandler lets users submit event ideas and admins review them.
type SuggestionHandler struct {
	Suggestions *repository.SuggestionRepo
}

// NewSuggestionHandler constructs a SuggestionHandler.
func NewSuggestionHandler(suggestions *repository.SuggestionRepo) *SuggestionHandler {
	return &SuggestionHandler{Suggestions: suggestions}
}

// Create handles POST /api/suggestions.
func (h *SuggestionHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	category := strings.TrimSpace(strings.ToLower(body.Category))
	if category != "" && !model.ValidCategory(category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
	}
	sg, err := h.Suggestions.Create(c.Request().Context(), &model.Suggestion{
		UserID:      uid,
		Title:       title,
		Description: strings.TrimSpace(body.Description),
		Category:    category,
	})
	if err != nil {
		return repoError(c, err, "suggestion not found")
	}
	return c.JSON(http.StatusCreated, sg)
}

// ListAll handles GET /api/admin/suggestions, newest first.
func (h *SuggestionHandler) ListAll(c echo.Context) error {
	suggestions, err := h.Suggestions.ListAll(c.Request().Context())
	if err != nil {
		return repoError(c, err, "suggestion not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"suggestions": suggestions})
}
