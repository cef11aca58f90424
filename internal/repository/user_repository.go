package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/store"
)

// UserRepo provides access to user profile documents keyed by the identity
// provider's uid.
type UserRepo struct {
	store store.Store
}

// NewUserRepo returns a UserRepo bound to the given store.
func NewUserRepo(s store.Store) *UserRepo { return &UserRepo{store: s} }

// Get loads one user.
func (r *UserRepo) Get(ctx context.Context, uid string) (*model.User, error) {
	doc, err := r.store.Get(ctx, model.UsersCollection, uid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.UserFromDoc(uid, doc), nil
}

// GetByEmail resolves a user by email (case-insensitive), used when sending
// friend requests addressed by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	docs, err := r.store.List(ctx, model.UsersCollection)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		u := model.UserFromDoc(d.ID, d.Data)
		if strings.ToLower(u.Email) == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

// Ensure returns the user document for uid, auto-provisioning it with
// defaults (role user, empty friends) on first login.  Existing documents
// get missing core fields backfilled without clobbering anything else.
func (r *UserRepo) Ensure(ctx context.Context, uid, email, name string) (*model.User, error) {
	doc, err := r.store.Get(ctx, model.UsersCollection, uid)
	if errors.Is(err, store.ErrNotFound) {
		u := &model.User{
			UID:       uid,
			Email:     email,
			Name:      strings.TrimSpace(name),
			Role:      model.RoleUser,
			Friends:   nil,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.store.Set(ctx, model.UsersCollection, uid, u.Doc()); err != nil {
			return nil, err
		}
		return u, nil
	}
	if err != nil {
		return nil, err
	}

	updates := store.Doc{}
	if asStr(doc["uid"]) == "" {
		updates["uid"] = uid
	}
	if email != "" && asStr(doc["email"]) == "" {
		updates["email"] = email
	}
	if name != "" && asStr(doc["name"]) == "" {
		updates["name"] = strings.TrimSpace(name)
	}
	if asStr(doc["role"]) == "" {
		updates["role"] = model.RoleUser
	}
	if len(updates) > 0 {
		if err := r.Merge(ctx, uid, updates); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, uid)
}

// Merge writes the given fields into the user document transactionally,
// leaving all other fields intact.  Used for profile updates.
func (r *UserRepo) Merge(ctx context.Context, uid string, fields store.Doc) error {
	return r.store.RunTransaction(ctx, func(tx *store.Tx) error {
		if _, err := tx.Get(model.UsersCollection, uid); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		updates := make([]store.FieldUpdate, 0, len(fields))
		for k, v := range fields {
			updates = append(updates, store.Set(k, v))
		}
		tx.Update(model.UsersCollection, uid, updates...)
		return nil
	})
}

func asStr(v any) string {
	s, _ := v.(string)
	return s
}
