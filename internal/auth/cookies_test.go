package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portkey-logistics/portkey/internal/domain"
)

func TestSessionTokens(t *testing.T) {
	settings := NewCookieSettings(testSupabaseConfig(""))

	access, refresh := settings.SessionTokens("theme=dark; sb-access-token=abc.def.ghi; sb-refresh-token=r1")
	assert.Equal(t, "abc.def.ghi", access)
	assert.Equal(t, "r1", refresh)

	access, refresh = settings.SessionTokens("")
	assert.Empty(t, access)
	assert.Empty(t, refresh)

	access, refresh = settings.SessionTokens("garbage;;=; sb-refresh-token=only")
	assert.Empty(t, access)
	assert.Equal(t, "only", refresh)
}

func TestIssueAndClear(t *testing.T) {
	settings := NewCookieSettings(testSupabaseConfig(""))
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	cookies := settings.Issue(&domain.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresAt: exp})
	require.Len(t, cookies, 2)
	assert.Equal(t, "sb-access-token", cookies[0].Name)
	assert.Equal(t, "a", cookies[0].Value)
	assert.Equal(t, exp, cookies[0].Expires)
	assert.True(t, cookies[0].HTTPOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, "/", cookies[0].Path)
	assert.Equal(t, "sb-refresh-token", cookies[1].Name)
	assert.Equal(t, 3600, cookies[1].MaxAge)

	cleared := settings.Clear()
	require.Len(t, cleared, 2)
	for _, c := range cleared {
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
	}
}
