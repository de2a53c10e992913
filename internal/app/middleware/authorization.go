package middleware

import (
	"context"

	"rentbook/internal/app/actor"
	"rentbook/internal/app/commands"
	"rentbook/internal/app/queries"
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// Access is the minimum caller a message needs.
type Access int

const (
	AccessPublic Access = iota
	AccessUser
	AccessSeller
)

// Restricted is implemented by commands and queries that need an actor.
type Restricted interface {
	Access() Access
}

// RoleAuthorizer checks Restricted messages against the actor in context.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(ctx context.Context, message any) error {
	restricted, ok := message.(Restricted)
	if !ok {
		return nil
	}
	switch restricted.Access() {
	case AccessUser:
		_, err := actor.Require(ctx)
		return err
	case AccessSeller:
		_, err := actor.RequireSeller(ctx)
		return err
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
