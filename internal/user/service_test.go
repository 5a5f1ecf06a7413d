package user

import (
	"context"
	"errors"
	"testing"

	"github.com/KhanPromiseP/cverra-sub006/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, name, email, passwordHash, role string) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name          string
		req           RegisterRequest
		setupMock     func(*MockRepository)
		expectError   bool
		expectedError error
	}{
		{
			name: "successful registration",
			req: RegisterRequest{
				Name:     "Test User",
				Email:    "test@example.com",
				Password: "password123",
			},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "test@example.com").Return(false, nil)
				m.On("Create", mock.Anything, "Test User", "test@example.com", mock.Anything, "member").Return(&User{
					ID:    1,
					Name:  "Test User",
					Email: "test@example.com",
					Role:  "member",
				}, nil)
			},
			expectError: false,
		},
		{
			name: "email already exists",
			req: RegisterRequest{
				Name:     "Test User",
				Email:    "existing@example.com",
				Password: "password123",
			},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "existing@example.com").Return(true, nil)
			},
			expectError:   true,
			expectedError: ErrEmailExists,
		},
		{
			name: "repository failure",
			req: RegisterRequest{
				Name:     "Test User",
				Email:    "test@example.com",
				Password: "password123",
			},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "test@example.com").Return(false, errors.New("db down"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)
			svc := NewService(repo, "test-secret")

			user, accessToken, refreshToken, err := svc.Register(context.Background(), tt.req)

			if tt.expectError {
				assert.Error(t, err)
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "member", user.Role)
			assert.NotEmpty(t, accessToken)
			assert.NotEmpty(t, refreshToken)
		})
	}
}

func TestService_Login(t *testing.T) {
	password := "password123"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	t.Run("successful login", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", mock.Anything, "test@example.com").Return(&User{
			ID:           1,
			Email:        "test@example.com",
			PasswordHash: hash,
			Role:         "member",
		}, nil)
		svc := NewService(repo, "test-secret")

		user, accessToken, refreshToken, err := svc.Login(context.Background(), LoginRequest{
			Email:    "test@example.com",
			Password: password,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, user.ID)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", mock.Anything, "test@example.com").Return(&User{
			ID:           1,
			Email:        "test@example.com",
			PasswordHash: hash,
			Role:         "member",
		}, nil)
		svc := NewService(repo, "test-secret")

		_, _, _, err := svc.Login(context.Background(), LoginRequest{
			Email:    "test@example.com",
			Password: "wrong",
		})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, ErrUserNotFound)
		svc := NewService(repo, "test-secret")

		_, _, _, err := svc.Login(context.Background(), LoginRequest{
			Email:    "nobody@example.com",
			Password: password,
		})

		// Unknown email and wrong password are indistinguishable to callers.
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_RefreshToken(t *testing.T) {
	t.Run("successful refresh", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByID", mock.Anything, 1).Return(&User{
			ID:    1,
			Email: "test@example.com",
			Role:  "member",
		}, nil)
		svc := NewService(repo, "test-secret")

		refreshToken, err := auth.GenerateRefreshToken(1, "test@example.com", "member", "test-secret")
		require.NoError(t, err)

		newAccessToken, user, err := svc.RefreshToken(context.Background(), refreshToken)

		require.NoError(t, err)
		assert.Equal(t, 1, user.ID)

		claims, err := auth.ValidateToken(newAccessToken, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, "access", claims.TokenType)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, "test-secret")

		accessToken, err := auth.GenerateAccessToken(1, "test@example.com", "member", "test-secret")
		require.NoError(t, err)

		_, _, err = svc.RefreshToken(context.Background(), accessToken)
		assert.ErrorIs(t, err, auth.ErrInvalidTokenType)
	})

	t.Run("deleted user cannot refresh", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByID", mock.Anything, 1).Return(nil, ErrUserNotFound)
		svc := NewService(repo, "test-secret")

		refreshToken, err := auth.GenerateRefreshToken(1, "test@example.com", "member", "test-secret")
		require.NoError(t, err)

		_, _, err = svc.RefreshToken(context.Background(), refreshToken)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
