package services

import (
	"context"
	"testing"
	"time"

	"github.com/campus-agora/market-svc/internal/domain"
	"github.com/campus-agora/market-svc/internal/dto"
	"github.com/campus-agora/market-svc/internal/helper"
	"github.com/campus-agora/market-svc/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingProducer captures published events in place of Kafka.
type recordingProducer struct {
	keys   []string
	values [][]byte
}

func (p *recordingProducer) PublishMessage(key, value []byte) error {
	p.keys = append(p.keys, string(key))
	p.values = append(p.values, value)
	return nil
}

type userTestEnv struct {
	svc      UserService
	db       *gorm.DB
	producer *recordingProducer
}

func setupUserTest(t *testing.T) *userTestEnv {
	t.Helper()

	db := setupTestDB(t)
	producer := &recordingProducer{}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	universityRepo := repository.NewUniversityRepository(db)
	universitySvc := NewUniversityService(universityRepo)

	svc := NewUserService(
		userRepo,
		tokenRepo,
		universitySvc,
		universityRepo,
		producer,
		nil,
		helper.SetupAuth("test-secret"),
	)

	return &userTestEnv{svc: svc, db: db, producer: producer}
}

func registerVerifiedUser(t *testing.T, env *userTestEnv, email string) *domain.User {
	t.Helper()

	user, err := env.svc.Register(dto.RegisterRequest{
		Email:    email,
		Name:     "Test Student",
		Password: "password123",
	})
	require.NoError(t, err)

	var token domain.VerificationToken
	require.NoError(t, env.db.First(&token, "user_id = ?", user.ID).Error)

	_, err = env.svc.VerifyEmail(token.Token)
	require.NoError(t, err)

	fresh := &domain.User{}
	require.NoError(t, env.db.First(fresh, user.ID).Error)
	return fresh
}

func TestRegister(t *testing.T) {
	env := setupUserTest(t)

	user, err := env.svc.Register(dto.RegisterRequest{
		Email:    "Alex@Harvard.edu",
		Name:     "Alex",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alex@harvard.edu", user.Email)
	assert.False(t, user.IsVerified)
	assert.Equal(t, "Harvard University", user.University)

	// A verification token was issued and an email event published.
	var count int64
	env.db.Model(&domain.VerificationToken{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
	require.Len(t, env.producer.keys, 1)
	assert.Equal(t, dto.EventVerifyEmail, env.producer.keys[0])
}

func TestRegisterValidation(t *testing.T) {
	env := setupUserTest(t)

	tests := []struct {
		name    string
		input   dto.RegisterRequest
		wantErr error
	}{
		{
			"non institutional email",
			dto.RegisterRequest{Email: "alex@gmail.com", Name: "Alex", Password: "password123"},
			ErrNonInstitutional,
		},
		{
			"weak password",
			dto.RegisterRequest{Email: "alex@mit.edu", Name: "Alex", Password: "short"},
			ErrWeakPassword,
		},
		{
			"missing name",
			dto.RegisterRequest{Email: "alex@mit.edu", Password: "password123"},
			ErrInvalidInput,
		},
		{
			"malformed email",
			dto.RegisterRequest{Email: "not an email", Name: "Alex", Password: "password123"},
			ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Register(tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setupUserTest(t)

	input := dto.RegisterRequest{Email: "dup@mit.edu", Name: "Dup", Password: "password123"}
	_, err := env.svc.Register(input)
	require.NoError(t, err)

	_, err = env.svc.Register(input)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginUnverified(t *testing.T) {
	env := setupUserTest(t)

	user, err := env.svc.Register(dto.RegisterRequest{
		Email:    "pending@mit.edu",
		Name:     "Pending",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = env.svc.Login(dto.UserLogin{Email: "pending@mit.edu", Password: "password123"})

	var needs *NeedsVerificationError
	require.ErrorAs(t, err, &needs)
	assert.Equal(t, user.ID, needs.UserID)
	assert.Equal(t, "pending@mit.edu", needs.Email)
	assert.Equal(t, "Pending", needs.Name)
}

func TestLoginVerified(t *testing.T) {
	env := setupUserTest(t)
	user := registerVerifiedUser(t, env, "ready@mit.edu")

	result, err := env.svc.Login(dto.UserLogin{Email: "ready@mit.edu", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)
	require.NotNil(t, result.University)
	assert.Equal(t, "massachusetts-institute-of-technology", result.University.Slug)

	// Verification plus login links the user to the university once.
	var links int64
	env.db.Model(&domain.UserUniversity{}).Where("user_id = ?", user.ID).Count(&links)
	assert.EqualValues(t, 1, links)

	_, err = env.svc.Login(dto.UserLogin{Email: "ready@mit.edu", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login(dto.UserLogin{Email: "ghost@mit.edu", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyEmailTokenSingleUse(t *testing.T) {
	env := setupUserTest(t)

	user, err := env.svc.Register(dto.RegisterRequest{
		Email:    "once@stanford.edu",
		Name:     "Once",
		Password: "password123",
	})
	require.NoError(t, err)

	var token domain.VerificationToken
	require.NoError(t, env.db.First(&token, "user_id = ?", user.ID).Error)

	result, err := env.svc.VerifyEmail(token.Token)
	require.NoError(t, err)
	assert.False(t, result.AlreadyVerified)

	fresh := &domain.User{}
	require.NoError(t, env.db.First(fresh, user.ID).Error)
	assert.True(t, fresh.IsVerified)

	// Consumed: the same token no longer works.
	_, err = env.svc.VerifyEmail(token.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	env := setupUserTest(t)

	user, err := env.svc.Register(dto.RegisterRequest{
		Email:    "late@stanford.edu",
		Name:     "Late",
		Password: "password123",
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&domain.VerificationToken{}).
		Where("user_id = ?", user.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	var token domain.VerificationToken
	require.NoError(t, env.db.First(&token, "user_id = ?", user.ID).Error)

	_, err = env.svc.VerifyEmail(token.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// Expired tokens are rejected, not silently consumed.
	var count int64
	env.db.Model(&domain.VerificationToken{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestResendVerificationReplacesToken(t *testing.T) {
	env := setupUserTest(t)

	user, err := env.svc.Register(dto.RegisterRequest{
		Email:    "again@mit.edu",
		Name:     "Again",
		Password: "password123",
	})
	require.NoError(t, err)

	var first domain.VerificationToken
	require.NoError(t, env.db.First(&first, "user_id = ?", user.ID).Error)

	require.NoError(t, env.svc.ResendVerification(dto.ResendVerificationRequest{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}))

	// At most one live token per user; the old one is gone.
	var count int64
	env.db.Model(&domain.VerificationToken{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	_, err = env.svc.VerifyEmail(first.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestForgotPassword(t *testing.T) {
	env := setupUserTest(t)
	user := registerVerifiedUser(t, env, "forgetful@mit.edu")

	// Unknown address reports success without issuing anything.
	require.NoError(t, env.svc.ForgotPassword("nobody@mit.edu"))
	var count int64
	env.db.Model(&domain.PasswordResetToken{}).Count(&count)
	assert.EqualValues(t, 0, count)

	require.NoError(t, env.svc.ForgotPassword(user.Email))
	env.db.Model(&domain.PasswordResetToken{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
	assert.Contains(t, env.producer.keys, dto.EventResetPassword)
}

func TestForgotPasswordUnverified(t *testing.T) {
	env := setupUserTest(t)

	_, err := env.svc.Register(dto.RegisterRequest{
		Email:    "fresh@mit.edu",
		Name:     "Fresh",
		Password: "password123",
	})
	require.NoError(t, err)

	err = env.svc.ForgotPassword("fresh@mit.edu")
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestResetPasswordFlow(t *testing.T) {
	env := setupUserTest(t)
	user := registerVerifiedUser(t, env, "resetter@mit.edu")

	require.NoError(t, env.svc.ForgotPassword(user.Email))

	var token domain.PasswordResetToken
	require.NoError(t, env.db.First(&token, "user_id = ?", user.ID).Error)

	require.NoError(t, env.svc.VerifyResetToken(token.Token))

	err := env.svc.ResetPassword(dto.ResetPasswordRequest{Token: token.Token, Password: "tiny"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	require.NoError(t, env.svc.ResetPassword(dto.ResetPasswordRequest{
		Token:    token.Token,
		Password: "brand-new-password",
	}))

	// Old password out, new password in.
	_, err = env.svc.Login(dto.UserLogin{Email: user.Email, Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login(dto.UserLogin{Email: user.Email, Password: "brand-new-password"})
	require.NoError(t, err)

	// Single use.
	err = env.svc.ResetPassword(dto.ResetPasswordRequest{
		Token:    token.Token,
		Password: "another-password",
	})
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	env := setupUserTest(t)
	user := registerVerifiedUser(t, env, "slow@mit.edu")

	require.NoError(t, env.svc.ForgotPassword(user.Email))
	require.NoError(t, env.db.Model(&domain.PasswordResetToken{}).
		Where("user_id = ?", user.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	var token domain.PasswordResetToken
	require.NoError(t, env.db.First(&token, "user_id = ?", user.ID).Error)

	assert.ErrorIs(t, env.svc.VerifyResetToken(token.Token), ErrTokenExpired)
	assert.ErrorIs(t, env.svc.ResetPassword(dto.ResetPasswordRequest{
		Token:    token.Token,
		Password: "whatever-else",
	}), ErrTokenExpired)
}

func TestSyncProfileCoalesce(t *testing.T) {
	env := setupUserTest(t)
	user := registerVerifiedUser(t, env, "profile@mit.edu")

	dept := "Physics"
	_, err := env.svc.SyncProfile(context.Background(), user.ID, dto.ProfileSyncRequest{
		Department: &dept,
	})
	require.NoError(t, err)

	// Name was not in the payload, so it survives.
	updated, err := env.svc.FetchProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Student", updated.Name)
	assert.Equal(t, "Physics", updated.Department)

	name := "Renamed Student"
	_, err = env.svc.SyncProfile(context.Background(), user.ID, dto.ProfileSyncRequest{
		Name: &name,
	})
	require.NoError(t, err)

	updated, err = env.svc.FetchProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Student", updated.Name)
	assert.Equal(t, "Physics", updated.Department)
}

func TestFetchProfileResolvesUniversity(t *testing.T) {
	env := setupUserTest(t)
	user := registerVerifiedUser(t, env, "campus@mit.edu")

	profile, err := env.svc.FetchProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "campus@mit.edu", profile.Email)
	assert.Equal(t, "Massachusetts Institute of Technology", profile.University)
	require.NotNil(t, profile.UniversityID)
	assert.Equal(t, "massachusetts-institute-of-technology", profile.UniversitySlug)

	_, err = env.svc.FetchProfile(99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPublicUserHidesEmail(t *testing.T) {
	env := setupUserTest(t)
	user := registerVerifiedUser(t, env, "public@mit.edu")

	public, err := env.svc.GetPublicUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, public.Email)
	assert.Equal(t, "Test Student", public.Name)
}
