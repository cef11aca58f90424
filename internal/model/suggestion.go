package model

import (
	"time"

	"github.com/eventbook/eventbook/internal/store"
)

// SuggestionsCollection is the store collection holding suggestions.
const SuggestionsCollection = "suggestions"

// Suggestion is a user-submitted event idea reviewed by admins.
type Suggestion struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SuggestionFromDoc maps a stored document to a Suggestion.
func SuggestionFromDoc(id string, d store.Doc) *Suggestion {
	return &Suggestion{
		ID:          id,
		UserID:      asString(d["userId"]),
		Title:       asString(d["title"]),
		Description: asString(d["description"]),
		Category:    asString(d["category"]),
		CreatedAt:   asTime(d["createdAt"]),
	}
}

// Doc maps the suggestion back to its stored shape.
func (s *Suggestion) Doc() store.Doc {
	return store.Doc{
		"userId":      s.UserID,
		"title":       s.Title,
		"description": s.Description,
		"category":    s.Category,
		"createdAt":   timeDoc(s.CreatedAt),
	}
}
