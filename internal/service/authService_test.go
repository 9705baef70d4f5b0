package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ds124wfegd/parking-system/internal/entity"
)

const testSecret = "test-secret"

// TestRegister проверяет, что новый пользователь получает роль user
// и хеш пароля вместо открытого текста
func TestRegister(t *testing.T) {
	userRepo := &stubUserRepo{}
	svc := NewAuthService(userRepo, testSecret, time.Hour, testLogger())

	user, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	userRepo := &stubUserRepo{createErr: entity.ErrUserAlreadyExists}
	svc := NewAuthService(userRepo, testSecret, time.Hour, testLogger())

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	assert.ErrorIs(t, err, entity.ErrUserAlreadyExists)
}

// TestLoginAndValidateToken проверяет полный цикл: вход и разбор токена
func TestLoginAndValidateToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := &stubUserRepo{users: map[string]*entity.User{
		"alice": {ID: 42, Username: "alice", PasswordHash: string(hash), Role: entity.RoleAdmin},
	}}
	svc := NewAuthService(userRepo, testSecret, time.Hour, testLogger())

	token, err := svc.Login(context.Background(), &LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := &stubUserRepo{users: map[string]*entity.User{
		"alice": {ID: 42, Username: "alice", PasswordHash: string(hash)},
	}}
	svc := NewAuthService(userRepo, testSecret, time.Hour, testLogger())

	_, err = svc.Login(context.Background(), &LoginRequest{Username: "alice", Password: "wrong"})

	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := NewAuthService(&stubUserRepo{}, testSecret, time.Hour, testLogger())

	_, err := svc.Login(context.Background(), &LoginRequest{Username: "ghost", Password: "secret123"})

	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

// TestValidateToken_Expired проверяет отклонение просроченного токена
func TestValidateToken_Expired(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := &stubUserRepo{users: map[string]*entity.User{
		"alice": {ID: 42, Username: "alice", PasswordHash: string(hash)},
	}}
	svc := NewAuthService(userRepo, testSecret, -time.Minute, testLogger())

	token, err := svc.Login(context.Background(), &LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewAuthService(&stubUserRepo{}, testSecret, time.Hour, testLogger())

	_, err := svc.ValidateToken("not.a.token")

	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

// TestValidateToken_WrongSecret: токен, подписанный другим ключом, не принимается
func TestValidateToken_WrongSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := &stubUserRepo{users: map[string]*entity.User{
		"alice": {ID: 42, Username: "alice", PasswordHash: string(hash)},
	}}
	issuer := NewAuthService(userRepo, "other-secret", time.Hour, testLogger())
	verifier := NewAuthService(userRepo, testSecret, time.Hour, testLogger())

	token, err := issuer.Login(context.Background(), &LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}
