package actor

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrAnonymous     = errors.New("actor: user id is required")
	ErrSellerOnly    = errors.New("actor: only sellers may do this")
	ErrInvalidRole   = errors.New("actor: unknown role")
	ErrNotResourceOf = errors.New("actor: resource belongs to another user")
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleBuyer, "":
		return RoleBuyer, nil
	case RoleSeller:
		return RoleSeller, nil
	}
	return "", ErrInvalidRole
}

// Actor is the user on whose behalf a command or query runs. Sellers can also
// rent from other sellers.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) Anonymous() bool { return strings.TrimSpace(a.UserID) == "" }

func (a Actor) IsSeller() bool { return a.Role == RoleSeller }

type ctxKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}

// Require returns the identified actor or ErrAnonymous.
func Require(ctx context.Context) (Actor, error) {
	a, ok := FromContext(ctx)
	if !ok || a.Anonymous() {
		return Actor{}, ErrAnonymous
	}
	return a, nil
}

func RequireSeller(ctx context.Context) (Actor, error) {
	a, err := Require(ctx)
	if err != nil {
		return Actor{}, err
	}
	if !a.IsSeller() {
		return Actor{}, ErrSellerOnly
	}
	return a, nil
}
