package model

import (
	"time"

	"github.com/eventbook/eventbook/internal/store"
)

// UsersCollection is the store collection holding user documents.
const UsersCollection = "users"

// User roles.  Role lookup is a plain document read; admin-only routes
// check users/{uid}.role == RoleAdmin.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Skill is a named ability with a coarse rating.
type Skill struct {
	Name   string `json:"name"`
	Rating string `json:"rating"`
}

// User is a profile document keyed by the identity provider's uid.  It is
// auto-provisioned on first login and extended through profile updates.
// The booking core reads only Role; everything else is plain CRUD.
type User struct {
	UID            string    `json:"uid"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	FullName       string    `json:"fullName,omitempty"`
	Role           string    `json:"role"`
	ProfilePicture string    `json:"profilePicture"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	Age            int       `json:"age,omitempty"`
	Nationality    string    `json:"nationality,omitempty"`
	HomeCountry    string    `json:"homeCountry,omitempty"`
	Languages      []string  `json:"languages,omitempty"`
	RestDays       []string  `json:"restDays,omitempty"`
	Interests      []string  `json:"interests,omitempty"`
	Skills         []Skill   `json:"skills,omitempty"`
	Friends        []string  `json:"friends"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserFromDoc maps a stored document to a User.  Missing role defaults to
// RoleUser so a sparse legacy document never grants elevated access.
func UserFromDoc(uid string, d store.Doc) *User {
	u := &User{
		UID:            uid,
		Email:          asString(d["email"]),
		Name:           asString(d["name"]),
		FullName:       asString(d["fullName"]),
		Role:           asString(d["role"]),
		ProfilePicture: asString(d["profilePicture"]),
		PhoneNumber:    asString(d["phoneNumber"]),
		Age:            asInt(d["age"]),
		Nationality:    asString(d["nationality"]),
		HomeCountry:    asString(d["homeCountry"]),
		Languages:      asStringSlice(d["languages"]),
		RestDays:       asStringSlice(d["restDays"]),
		Interests:      asStringSlice(d["interests"]),
		Skills:         skillsFromDoc(d["skills"]),
		Friends:        asStringSlice(d["friends"]),
		CreatedAt:      asTime(d["createdAt"]),
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return u
}

// Doc maps the user back to its stored shape.
func (u *User) Doc() store.Doc {
	skills := make([]any, 0, len(u.Skills))
	for _, s := range u.Skills {
		skills = append(skills, store.Doc{"name": s.Name, "rating": s.Rating})
	}
	return store.Doc{
		"uid":            u.UID,
		"email":          u.Email,
		"name":           u.Name,
		"fullName":       u.FullName,
		"role":           u.Role,
		"profilePicture": u.ProfilePicture,
		"phoneNumber":    u.PhoneNumber,
		"age":            u.Age,
		"nationality":    u.Nationality,
		"homeCountry":    u.HomeCountry,
		"languages":      stringsDoc(u.Languages),
		"restDays":       stringsDoc(u.RestDays),
		"interests":      stringsDoc(u.Interests),
		"skills":         skills,
		"friends":        stringsDoc(u.Friends),
		"createdAt":      timeDoc(u.CreatedAt),
	}
}

// IsFriend reports whether uid is already in the user's friends list.
func (u *User) IsFriend(uid string) bool {
	for _, f := range u.Friends {
		if f == uid {
			return true
		}
	}
	return false
}

func skillsFromDoc(v any) []Skill {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Skill, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		s := Skill{Name: asString(m["name"]), Rating: asString(m["rating"])}
		if s.Name != "" {
			out = append(out, s)
		}
	}
	return out
}
