package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfchat/mock"
	"github.com/tieubaoca/pdfchat/types"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService() UserService {
	s := NewUserService(mock.NewUserRepo())
	s.(*userService).cost = bcrypt.MinCost
	return s
}

func TestUserService_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestUserService()

	user, err := s.Signup(ctx, " alice ", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "s3cret", user.HashedPassword)

	logged, err := s.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	byID, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestUserService_SignupValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestUserService()

	_, err := s.Signup(ctx, "", "pw")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
	_, err = s.Signup(ctx, "bob", "")
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = s.Signup(ctx, "bob", "pw")
	require.NoError(t, err)
	_, err = s.Signup(ctx, "bob", "other")
	assert.ErrorIs(t, err, types.ErrDuplicateUsername)
}

func TestUserService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	s := newTestUserService()
	_, err := s.Signup(ctx, "carol", "right")
	require.NoError(t, err)

	_, err = s.Login(ctx, "carol", "wrong")
	assert.ErrorIs(t, err, types.ErrAuthenticationFailure)

	_, err = s.Login(ctx, "nobody", "right")
	assert.ErrorIs(t, err, types.ErrAuthenticationFailure)
}
