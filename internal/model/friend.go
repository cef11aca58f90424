package model

import (
	"time"

	"github.com/eventbook/eventbook/internal/store"
)

// FriendRequestsCollection is the store collection holding friend requests.
const FriendRequestsCollection = "friendRequests"

// Friend request statuses.
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// FriendRequest tracks a pending friendship between two users.  Accepting
// it links both users' friends arrays in one transaction.
type FriendRequest struct {
	ID          string    `json:"id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	RespondedAt time.Time `json:"respondedAt,omitempty"`
}

// FriendRequestFromDoc maps a stored document to a FriendRequest.
func FriendRequestFromDoc(id string, d store.Doc) *FriendRequest {
	return &FriendRequest{
		ID:          id,
		From:        asString(d["from"]),
		To:          asString(d["to"]),
		Status:      asString(d["status"]),
		CreatedAt:   asTime(d["createdAt"]),
		RespondedAt: asTime(d["respondedAt"]),
	}
}

// Doc maps the request back to its stored shape.
func (r *FriendRequest) Doc() store.Doc {
	return store.Doc{
		"from":        r.From,
		"to":          r.To,
		"status":      r.Status,
		"createdAt":   timeDoc(r.CreatedAt),
		"respondedAt": timeDoc(r.RespondedAt),
	}
}
