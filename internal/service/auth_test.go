package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/inventory/internal/hash"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc, err := env.Auth.Register(ctx, "  Alice ", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.Identity)
	assert.NotEmpty(t, acc.ID)

	stored, err := env.Repo.FindByIdentity(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", stored.PasswordHash)
	assert.True(t, hash.CheckPassword(stored.PasswordHash, "pw123"))

	ev := env.Events.last(t)
	assert.Equal(t, TopicAccountEvents, ev.Topic)
	assert.Equal(t, "account_registered", ev.Event["type"])
	assert.Equal(t, "alice", ev.Event["identity"])
}

func TestRegister_DuplicateNormalizedIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Auth.Register(ctx, "Bob", "pw")
	require.NoError(t, err)

	_, err = env.Auth.Register(ctx, "bob ", "other")
	require.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for name, in := range map[string][2]string{
		"blank identity":    {"   ", "pw"},
		"blank password":    {"carol", "  "},
		"long identity":     {strings.Repeat("x", maxIdentityLen+1), "pw"},
		"password too long": {"carol", strings.Repeat("p", hash.MaxPasswordBytes+1)},
	} {
		_, err := env.Auth.Register(ctx, in[0], in[1])
		assert.ErrorIs(t, err, ErrValidation, name)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc, err := env.Auth.Register(ctx, "alice", "pw123")
	require.NoError(t, err)

	res, err := env.Auth.Login(ctx, "ALICE", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Account.Identity)
	assert.Equal(t, acc.ID, res.Account.ID)
	assert.True(t, res.ExpiresAt.IsZero())

	claims, err := env.Tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID.String(), claims.Subject)
	assert.Equal(t, "alice", claims.Identity)

	assert.Equal(t, "account_logged_in", env.Events.last(t).Event["type"])
}

func TestLogin_UnknownAndWrongPasswordAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Auth.Register(ctx, "alice", "pw123")
	require.NoError(t, err)

	_, wrongPw := env.Auth.Login(ctx, "alice", "nope")
	_, unknown := env.Auth.Login(ctx, "mallory", "pw123")

	require.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	require.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestLogin_PublishFailureDoesNotFailLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Auth.Register(ctx, "alice", "pw123")
	require.NoError(t, err)

	env.Events.err = errBroker
	res, err := env.Auth.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}
