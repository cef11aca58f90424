package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/store"
)

// FriendRepo manages friend requests and the symmetric friends arrays on
// user documents.  Accepting a request links both users in one transaction
// so the friendship can never be half-applied.
type FriendRepo struct {
	store store.Store
}

// NewFriendRepo returns a FriendRepo bound to the given store.
func NewFriendRepo(s store.Store) *FriendRepo { return &FriendRepo{store: s} }

// CreateRequest records a pending friend request from -> to.  It rejects
// self-requests, existing friendships and duplicate pending requests in
// either direction.
func (r *FriendRepo) CreateRequest(ctx context.Context, from, to string) (*model.FriendRequest, error) {
	if from == to {
		return nil, ErrDuplicate
	}
	sender, err := r.userByID(ctx, from)
	if err != nil {
		return nil, err
	}
	if sender.IsFriend(to) {
		return nil, ErrDuplicate
	}
	pending, err := r.listRequests(ctx)
	if err != nil {
		return nil, err
	}
	for _, req := range pending {
		if req.Status != model.FriendRequestPending {
			continue
		}
		if (req.From == from && req.To == to) || (req.From == to && req.To == from) {
			return nil, ErrDuplicate
		}
	}
	req := &model.FriendRequest{
		From:      from,
		To:        to,
		Status:    model.FriendRequestPending,
		CreatedAt: time.Now().UTC(),
	}
	id, err := r.store.Add(ctx, model.FriendRequestsCollection, req.Doc())
	if err != nil {
		return nil, err
	}
	req.ID = id
	return req, nil
}

// Respond accepts or rejects a pending request.  Only the addressee may
// respond.  Acceptance unions each user into the other's friends array in
// the same transaction that flips the request status.
func (r *FriendRepo) Respond(ctx context.Context, requestID, uid string, accept bool) (*model.FriendRequest, error) {
	var out *model.FriendRequest
	err := r.store.RunTransaction(ctx, func(tx *store.Tx) error {
		doc, err := tx.Get(model.FriendRequestsCollection, requestID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		req := model.FriendRequestFromDoc(requestID, doc)
		if req.To != uid {
			return ErrForbidden
		}
		if req.Status != model.FriendRequestPending {
			return ErrDuplicate
		}
		now := time.Now().UTC()
		status := model.FriendRequestRejected
		if accept {
			status = model.FriendRequestAccepted
			// read both user documents so the commit verifies they still
			// exist and have not changed underneath the union
			for _, id := range []string{req.From, req.To} {
				if _, err := tx.Get(model.UsersCollection, id); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return ErrNotFound
					}
					return err
				}
			}
			tx.Update(model.UsersCollection, req.From, store.ArrayUnion("friends", req.To))
			tx.Update(model.UsersCollection, req.To, store.ArrayUnion("friends", req.From))
		}
		tx.Update(model.FriendRequestsCollection, requestID,
			store.Set("status", status),
			store.Set("respondedAt", now.Format(time.RFC3339)),
		)
		req.Status = status
		req.RespondedAt = now
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListFriends resolves the user's friends array into user records.
func (r *FriendRepo) ListFriends(ctx context.Context, uid string) ([]*model.User, error) {
	u, err := r.userByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make([]*model.User, 0, len(u.Friends))
	for _, fid := range u.Friends {
		f, err := r.userByID(ctx, fid)
		if err != nil {
			// a dangling uid in the array should not break the listing
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// ListPendingFor returns pending requests addressed to uid, oldest first.
func (r *FriendRepo) ListPendingFor(ctx context.Context, uid string) ([]*model.FriendRequest, error) {
	reqs, err := r.listRequests(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.FriendRequest, 0)
	for _, req := range reqs {
		if req.To == uid && req.Status == model.FriendRequestPending {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// RemoveFriend deletes the friendship from both users' arrays atomically.
func (r *FriendRepo) RemoveFriend(ctx context.Context, uid, friendUID string) error {
	return r.store.RunTransaction(ctx, func(tx *store.Tx) error {
		doc, err := tx.Get(model.UsersCollection, uid)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !model.UserFromDoc(uid, doc).IsFriend(friendUID) {
			return ErrNotFound
		}
		tx.Update(model.UsersCollection, uid, store.ArrayRemove("friends", friendUID))
		if _, err := tx.Get(model.UsersCollection, friendUID); err == nil {
			tx.Update(model.UsersCollection, friendUID, store.ArrayRemove("friends", uid))
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil
	})
}

func (r *FriendRepo) userByID(ctx context.Context, uid string) (*model.User, error) {
	doc, err := r.store.Get(ctx, model.UsersCollection, uid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.UserFromDoc(uid, doc), nil
}

func (r *FriendRepo) listRequests(ctx context.Context) ([]*model.FriendRequest, error) {
	docs, err := r.store.List(ctx, model.FriendRequestsCollection)
	if err != nil {
		return nil, err
	}
	out := make([]*model.FriendRequest, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.FriendRequestFromDoc(d.ID, d.Data))
	}
	return out, nil
}
