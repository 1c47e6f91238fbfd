package entity

import "context"

// User identifies the learner an event belongs to. Name and Email are display-only and may be empty.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Admin bool   `json:"admin,omitempty"`
}

// Validate validates the user entity
func (u *User) Validate() error {
	if u.ID <= 0 {
		return ErrInvalidUserID
	}
	return nil
}

// DisplayName returns the best available human-readable name.
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return "learner"
	}
}

type userContextKey struct{}

// WithUser attaches the authenticated user to ctx.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext returns the authenticated user stored in ctx, if any.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userContextKey{}).(User)
	return u, ok
}

// ResolveUser returns the context user when it matches id, otherwise a bare User with id.
func ResolveUser(ctx context.Context, id int64) User {
	if u, ok := UserFromContext(ctx); ok && u.ID == id {
		return u
	}
	return User{ID: id}
}
