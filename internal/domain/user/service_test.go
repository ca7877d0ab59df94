package user

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&User{}))

	cfg := &config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
	return NewService(db, cfg)
}

func TestRegister_ReturnsIdentityAndToken(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(&RegisterRequest{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "analytical-engine",
	})

	require.NoError(t, err)
	assert.NotZero(t, resp.Identity.UserID)
	assert.Equal(t, "Ada Lovelace", resp.Identity.Name)
	assert.False(t, resp.Identity.IsAdmin)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "analytical-engine",
	})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{
		Name: "Imposter", Email: "ada@example.com", Password: "another-password",
	})

	require.Error(t, err)
	assert.Equal(t, "email_taken", apperror.Reason(err))
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "short",
	})

	require.Error(t, err)
	assert.Equal(t, "weak_password", apperror.Reason(err))
}

func TestAuthenticate_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "analytical-engine",
	})
	require.NoError(t, err)

	resp, err := svc.Authenticate(&LoginRequest{
		Email: "ada@example.com", Password: "analytical-engine",
	})

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.Identity.Email)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "analytical-engine",
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(&LoginRequest{
		Email: "ada@example.com", Password: "difference-engine",
	})

	require.Error(t, err)
	assert.Equal(t, "invalid_credentials", apperror.Reason(err))
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Authenticate(&LoginRequest{
		Email: "nobody@example.com", Password: "whatever-password",
	})

	require.Error(t, err)
	assert.Equal(t, "invalid_credentials", apperror.Reason(err))
}
