//go:build unit

package user_test

import (
	"testing"

	"refund-settlement-engine/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRole(t *testing.T) {
	for _, s := range []string{"user", "owner", "admin"} {
		role, err := user.NewRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, role.String())
	}

	_, err := user.NewRole("operator")
	assert.ErrorIs(t, err, user.ErrInvalidRole)
	_, err = user.NewRole("")
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestActorCanActFor(t *testing.T) {
	owner := uuid.New()

	cases := []struct {
		name  string
		actor user.Actor
		want  bool
	}{
		{name: "owner of the record", actor: user.NewActor(owner, user.RoleUser), want: true},
		{name: "other user", actor: user.NewActor(uuid.New(), user.RoleUser), want: false},
		{name: "cafe owner is not the reservation owner", actor: user.NewActor(uuid.New(), user.RoleOwner), want: false},
		{name: "admin", actor: user.NewActor(uuid.New(), user.RoleAdmin), want: true},
		{name: "anonymous", actor: user.Actor{}, want: false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.actor.CanActFor(owner))
		})
	}

	assert.True(t, user.NewActor(uuid.New(), user.RoleOwner).IsStaff())
	assert.False(t, user.NewActor(uuid.New(), user.RoleUser).IsStaff())
}
