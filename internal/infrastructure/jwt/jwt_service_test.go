package jwt

import (
	"testing"
	"time"

	"github.com/ipede/album-catalog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func getTokenService(t *testing.T, secret string, clock *fakeClock) domain.TokenService {
	t.Helper()
	return NewTokenService(newTestCodec(t, secret), 5*time.Minute, domain.DefaultRefreshTokenDuration,
		zap.NewNop(), WithClock(clock.Now))
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTokenService_AccessToken(t *testing.T) {
	clock := newFakeClock()
	service := getTokenService(t, testSecret, clock)

	t.Run("roles provided", func(t *testing.T) {
		token, err := service.IssueAccessToken("testuser", []string{"ROLE_USER", "ROLE_ADMIN"})
		require.NoError(t, err)

		username, err := service.ParseUsername(token)
		require.NoError(t, err)
		assert.Equal(t, "testuser", username)
		assert.ElementsMatch(t, []string{"ROLE_USER", "ROLE_ADMIN"}, service.TryParseRoles(token))
		assert.False(t, service.IsRefresh(token))

		expiresAt, err := service.ParseExpiry(token)
		require.NoError(t, err)
		assert.WithinDuration(t, clock.now.Add(5*time.Minute), expiresAt, 0)
	})

	t.Run("roles empty", func(t *testing.T) {
		for _, roles := range [][]string{nil, {}} {
			token, err := service.IssueAccessToken("testuser", roles)
			require.NoError(t, err)

			claims, err := newTestCodec(t, testSecret).VerifyAndDecode(token)
			require.NoError(t, err)
			assert.Nil(t, claims.Roles)

			assert.Empty(t, service.TryParseRoles(token))
			assert.NotNil(t, service.TryParseRoles(token))
		}
	})

	t.Run("valid for its subject", func(t *testing.T) {
		token, err := service.IssueAccessToken("testuser", []string{"ROLE_USER"})
		require.NoError(t, err)

		ok, err := service.ValidateAccess(token, "testuser")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = service.ValidateAccess(token, "otheruser")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("not a refresh token", func(t *testing.T) {
		token, err := service.IssueAccessToken("testuser", []string{"ROLE_USER"})
		require.NoError(t, err)

		ok, err := service.ValidateRefresh(token, "testuser")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestTokenService_RefreshToken(t *testing.T) {
	clock := newFakeClock()
	service := getTokenService(t, testSecret, clock)

	token, err := service.IssueRefreshToken("testuser")
	require.NoError(t, err)

	t.Run("type refresh", func(t *testing.T) {
		username, err := service.ParseUsername(token)
		require.NoError(t, err)
		assert.Equal(t, "testuser", username)
		assert.True(t, service.IsRefresh(token))
		assert.Empty(t, service.TryParseRoles(token))
	})

	t.Run("lives seven days", func(t *testing.T) {
		expiresAt, err := service.ParseExpiry(token)
		require.NoError(t, err)
		assert.WithinDuration(t, clock.now.Add(7*24*time.Hour), expiresAt, 0)
	})

	t.Run("never valid as access", func(t *testing.T) {
		for _, username := range []string{"testuser", "otheruser"} {
			ok, err := service.ValidateAccess(token, username)
			require.NoError(t, err)
			assert.False(t, ok)
		}
	})

	t.Run("validate refresh", func(t *testing.T) {
		ok, err := service.ValidateRefresh(token, "testuser")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = service.ValidateRefresh(token, "otheruser")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestTokenService_Expiry(t *testing.T) {
	clock := newFakeClock()
	service := getTokenService(t, testSecret, clock)

	token, err := service.IssueAccessToken("testuser", []string{"ROLE_USER"})
	require.NoError(t, err)

	expired, err := service.IsExpired(token)
	require.NoError(t, err)
	assert.False(t, expired)

	clock.Advance(6 * time.Minute)

	expired, err = service.IsExpired(token)
	require.NoError(t, err)
	assert.True(t, expired)

	ok, err := service.ValidateAccess(token, "testuser")
	require.NoError(t, err, "expiry is a soft failure")
	assert.False(t, ok)

	username, err := service.ParseUsername(token)
	require.NoError(t, err)
	assert.Equal(t, "testuser", username)
}

func TestTokenService_ForeignKey(t *testing.T) {
	clock := newFakeClock()
	service := getTokenService(t, testSecret, clock)
	other := getTokenService(t, "another-secret-key-that-is-long-enough!", clock)

	access, err := other.IssueAccessToken("testuser", []string{"ROLE_ADMIN"})
	require.NoError(t, err)
	refresh, err := other.IssueRefreshToken("testuser")
	require.NoError(t, err)

	t.Run("hard path fails", func(t *testing.T) {
		_, err := service.ParseUsername(access)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)

		_, err = service.ParseExpiry(access)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)

		_, err = service.IsExpired(access)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)

		ok, err := service.ValidateAccess(access, "testuser")
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
		assert.False(t, ok)

		ok, err = service.ValidateRefresh(refresh, "testuser")
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
		assert.False(t, ok)
	})

	t.Run("soft path swallows", func(t *testing.T) {
		assert.Empty(t, service.TryParseRoles(access))
		assert.False(t, service.IsRefresh(access))
		assert.False(t, service.IsRefresh(refresh))
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := service.ParseUsername("not-a-token")
		assert.ErrorIs(t, err, domain.ErrTokenMalformed)
		assert.Empty(t, service.TryParseRoles("not-a-token"))
		assert.False(t, service.IsRefresh("not-a-token"))
	})
}

func TestTokenService_IssueTokenPair(t *testing.T) {
	service := getTokenService(t, testSecret, newFakeClock())

	pair, err := service.IssueTokenPair("testuser", []string{"ROLE_USER"})
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.False(t, service.IsRefresh(pair.AccessToken))
	assert.True(t, service.IsRefresh(pair.RefreshToken))
}

func TestTokenService_Durations(t *testing.T) {
	service := NewTokenService(newTestCodec(t, testSecret), 0, 0, zap.NewNop())

	assert.Equal(t, domain.DefaultAccessTokenDuration, service.AccessDuration())
	assert.Equal(t, domain.DefaultRefreshTokenDuration, service.RefreshDuration())
}
