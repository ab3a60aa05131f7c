package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityhub/internal/domain"
)

func TestJWTProvider_RoundTrip(t *testing.T) {
	provider := NewJWTProvider("test-secret")

	principal := domain.Principal{
		ID:           "p-1",
		Role:         domain.RoleMember,
		Subscription: domain.TrackAcademy,
	}
	token, err := provider.Issue(principal, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := provider.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, principal, got)
}

func TestJWTProvider_Verify(t *testing.T) {
	provider := NewJWTProvider("test-secret")

	t.Run("garbage token", func(t *testing.T) {
		_, err := provider.Verify("not-a-token")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTProvider("other-secret")
		token, err := other.Issue(domain.Principal{ID: "p-1", Role: domain.RoleMember}, time.Hour)
		require.NoError(t, err)

		_, err = provider.Verify(token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := provider.Issue(domain.Principal{ID: "p-1", Role: domain.RoleMember}, -time.Minute)
		require.NoError(t, err)

		_, err = provider.Verify(token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("missing role defaults to member", func(t *testing.T) {
		token, err := provider.Issue(domain.Principal{ID: "p-2"}, time.Hour)
		require.NoError(t, err)

		got, err := provider.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleMember, got.Role)
	})
}
