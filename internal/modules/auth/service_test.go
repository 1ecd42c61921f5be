package auth

import (
	"context"
	"errors"
	"testing"

	"modpaypal/internal/domain"
	"modpaypal/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockJWT struct {
	mock.Mock
}

func (m *mockJWT) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := HashPassword(password)
	require.NoError(t, err)
	return h
}

func TestLogin_Success(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockJWT)
	svc := NewService(users, tokens)

	users.On("GetByEmail", mock.Anything, "admin@example.com").
		Return(&domain.User{ID: 1, Email: "admin@example.com", IsAdmin: true, PasswordHash: hashed(t, "secret123")}, nil)
	tokens.On("GenerateToken", int64(1), jwt.RoleAdmin).Return("signed", nil)

	res, err := svc.Login(context.Background(), LoginRequest{Email: "  Admin@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "signed", res.AccessToken)
	assert.Empty(t, res.User.PasswordHash)

	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()

	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)
	users.On("GetByEmail", mock.Anything, "student@example.com").
		Return(&domain.User{ID: 5, PasswordHash: hashed(t, "right-password")}, nil)
	users.On("GetByEmail", mock.Anything, "gone@example.com").
		Return(&domain.User{ID: 6, Suspended: true, PasswordHash: hashed(t, "right-password")}, nil)
	users.On("GetByEmail", mock.Anything, "broken@example.com").Return(nil, errors.New("db down"))

	svc := NewService(users, new(mockJWT))

	_, err := svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "student@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "gone@example.com", Password: "right-password"})
	assert.ErrorIs(t, err, ErrUserSuspended)

	_, err = svc.Login(ctx, LoginRequest{Email: "broken@example.com", Password: "x"})
	assert.EqualError(t, err, "db down")
}

func TestGetCurrentUser(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, int64(5)).Return(&domain.User{ID: 5, PasswordHash: "h"}, nil)
	users.On("GetByID", mock.Anything, int64(7)).Return(nil, gorm.ErrRecordNotFound)
	svc := NewService(users, new(mockJWT))

	u, err := svc.GetCurrentUser(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)

	_, err = svc.GetCurrentUser(context.Background(), 7)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIsLocal(t *testing.T) {
	h := NewHandler(nil, 0, "https://lms.example.com/")

	assert.True(t, h.isLocal("/mod/paypal/view?n=3"))
	assert.True(t, h.isLocal("https://lms.example.com/mod/paypal/view?n=3"))
	assert.False(t, h.isLocal("//evil.example.com/x"))
	assert.False(t, h.isLocal("https://evil.example.com/"))
	assert.False(t, h.isLocal(""))
}
