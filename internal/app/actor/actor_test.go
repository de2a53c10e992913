package actor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequire(t *testing.T) {
	_, err := Require(context.Background())
	assert.ErrorIs(t, err, ErrAnonymous)

	ctx := WithActor(context.Background(), Actor{UserID: "u1", Role: RoleBuyer})
	a, err := Require(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", a.UserID)

	_, err = RequireSeller(ctx)
	assert.ErrorIs(t, err, ErrSellerOnly)

	ctx = WithActor(context.Background(), Actor{UserID: "s1", Role: RoleSeller})
	_, err = RequireSeller(ctx)
	assert.NoError(t, err)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Seller ")
	require.NoError(t, err)
	assert.Equal(t, RoleSeller, r)
	r, err = ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleBuyer, r)
	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
