package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenhub/backend/internal/models"
)

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Username: "alice", Role: models.RoleModerator}
}

func TestGenerateAndIdentify(t *testing.T) {
	svc := NewJWTService("secret", 1)
	u := testUser()

	token, err := svc.Generate(u)
	require.NoError(t, err)

	id, err := svc.Identify(token)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{ID: u.ID, Username: "alice", Role: models.RoleModerator}, id)
}

func TestValidateExpired(t *testing.T) {
	svc := NewJWTService("secret", 1)
	issued := time.Now().Add(-3 * time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.Generate(testUser())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejects(t *testing.T) {
	svc := NewJWTService("secret", 1)
	u := testUser()
	now := time.Now()

	other, err := NewJWTService("other-secret", 1).Generate(u)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: u.ID, Username: u.Username, Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: u.ID, Username: u.Username, Role: string(u.Role),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: u.ID, Username: u.Username, Role: "root",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", other},
		{"wrong algorithm", hs512},
		{"no expiry", noExpiry},
		{"unknown role", badRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
