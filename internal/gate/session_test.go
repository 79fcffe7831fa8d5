package gate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/portkey-logistics/portkey/internal/auth"
	"github.com/portkey-logistics/portkey/internal/domain"
)

type staticValidator struct {
	session *auth.Session
	err     error
}

func (s staticValidator) ValidateAndRefresh(context.Context, string) (*auth.Session, error) {
	return s.session, s.err
}

func TestSessionReaderRejectsEmptyIdentity(t *testing.T) {
	ctx := context.Background()

	for _, v := range []staticValidator{
		{session: nil},
		{session: &auth.Session{}},
		{session: &auth.Session{Identity: &domain.Identity{}}},
		{err: auth.ErrSessionRejected},
	} {
		got := NewSessionReader(v, nil).Read(ctx, "sb-access-token=x")
		assert.False(t, got.Authenticated)
		assert.Empty(t, got.Cookies, "no cookies leak from a failed validation")
	}

	ok := NewSessionReader(staticValidator{session: &auth.Session{Identity: &domain.Identity{UserID: "u"}}}, nil).
		Read(ctx, "sb-access-token=x")
	assert.True(t, ok.Authenticated)
	assert.Equal(t, "u", ok.Identity.UserID)
}
