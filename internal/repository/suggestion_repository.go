package repository

import (
	"context"
	"sort"
	"time"

	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/store"
)

// SuggestionRepo stores user-submitted event suggestions for admin review.
type SuggestionRepo struct {
	store store.Store
}

// NewSuggestionRepo returns a SuggestionRepo bound to the given store.
func NewSuggestionRepo(s store.Store) *SuggestionRepo { return &SuggestionRepo{store: s} }

// Create records a suggestion and returns it with its new ID.
func (r *SuggestionRepo) Create(ctx context.Context, sg *model.Suggestion) (*model.Suggestion, error) {
	sg.CreatedAt = time.Now().UTC()
	id, err := r.store.Add(ctx, model.SuggestionsCollection, sg.Doc())
	if err != nil {
		return nil, err
	}
	sg.ID = id
	return sg, nil
}

// ListAll returns every suggestion, newest first.
func (r *SuggestionRepo) ListAll(ctx context.Context) ([]*model.Suggestion, error) {
	docs, err := r.store.List(ctx, model.SuggestionsCollection)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Suggestion, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.SuggestionFromDoc(d.ID, d.Data))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
