package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store/memory"
	"github.com/gardenhub/backend/pkg/utils"
)

func newTestService() (*Service, *memory.Store) {
	st := memory.New()
	return NewService(st, NewJWTService("secret", 1), 4, zap.NewNop()), st
}

func register(t *testing.T, svc *Service, username string) *Session {
	t.Helper()
	sess, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return sess
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService()
	sess := register(t, svc, "alice")

	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "alice", sess.User.Username)
	assert.Equal(t, models.RoleMember, sess.User.Role)

	id, err := svc.jwt.Identify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, id.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
		kind apperr.Kind
	}{
		{"short username", RegisterInput{Username: "al", Email: "al@example.com", Password: "longenough"}, apperr.ValidationFailed},
		{"bad username", RegisterInput{Username: "al ice", Email: "al@example.com", Password: "longenough"}, apperr.ValidationFailed},
		{"short password", RegisterInput{Username: "alice", Email: "al@example.com", Password: "short"}, apperr.ValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService()
	register(t, svc, "alice")

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "new@example.com", Password: "correct horse"})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestLogin(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	reg := register(t, svc, "alice")

	sess, err := svc.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, sess.User.ID)

	sess, err = svc.Login(ctx, "ALICE@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, sess.User.ID)

	u, err := st.Users().GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, u.LastLoginAt)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	register(t, svc, "alice")

	_, unknownErr := svc.Login(ctx, "nobody", "correct horse")
	_, wrongErr := svc.Login(ctx, "alice", "wrong password")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, apperr.InvalidCredentials, apperr.KindOf(unknownErr))
	assert.Equal(t, apperr.InvalidCredentials, apperr.KindOf(wrongErr))
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestMe(t *testing.T) {
	svc, _ := newTestService()
	reg := register(t, svc, "alice")

	u, err := svc.Me(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestLoginComparesPasswordForUnknownUsers(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	register(t, svc, "alice")

	var hashes []string
	svc.checkPassword = func(plain, hashed string) bool {
		hashes = append(hashes, hashed)
		return utils.CheckPassword(plain, hashed)
	}

	_, err := svc.Login(ctx, "nobody", "correct horse")
	assert.Equal(t, apperr.InvalidCredentials, apperr.KindOf(err))
	_, err = svc.Login(ctx, "ghost@example.com", "correct horse")
	assert.Equal(t, apperr.InvalidCredentials, apperr.KindOf(err))
	_, err = svc.Login(ctx, "alice", "wrong password")
	assert.Equal(t, apperr.InvalidCredentials, apperr.KindOf(err))

	require.Len(t, hashes, 3)
	assert.NotEmpty(t, hashes[0])
	assert.Equal(t, hashes[0], hashes[1], "the dummy hash is computed once")
	cost, err := bcrypt.Cost([]byte(hashes[0]))
	require.NoError(t, err)
	assert.Equal(t, 4, cost)
}
