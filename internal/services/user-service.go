package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/campus-agora/market-svc/internal/domain"
	"github.com/campus-agora/market-svc/internal/dto"
	"github.com/campus-agora/market-svc/internal/helper"
	"github.com/campus-agora/market-svc/internal/helper/utils"
	"github.com/campus-agora/market-svc/internal/interfaces"
	"github.com/campus-agora/market-svc/internal/repository"
	pkgutils "github.com/campus-agora/market-svc/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
	minPasswordLen       = 8
)

type LoginResult struct {
	Token      string
	User       *domain.User
	University *domain.University
}

type VerifyResult struct {
	AlreadyVerified bool
	University      *domain.University
}

type UserService interface {
	// Auth
	Register(input dto.RegisterRequest) (*domain.User, error)
	Login(input dto.UserLogin) (*LoginResult, error)
	Authenticate(c *fiber.Ctx) (*domain.User, error)
	VerifyEmail(token string) (*VerifyResult, error)
	ResendVerification(input dto.ResendVerificationRequest) error
	ForgotPassword(email string) error
	VerifyResetToken(token string) error
	ResetPassword(input dto.ResetPasswordRequest) error

	// Profile
	SyncProfile(ctx context.Context, userID uint, input dto.ProfileSyncRequest) (*domain.User, error)
	FetchProfile(userID uint) (*dto.UserResponse, error)
	GetPublicUser(userID uint) (*dto.UserResponse, error)
}

type userService struct {
	repo         repository.UserRepository
	tokenRepo    repository.TokenRepository
	universities UniversityService
	univRepo     repository.UniversityRepository
	producer     interfaces.ProducerHandler
	uploader     interfaces.Uploader
	auth         helper.Auth
}

func NewUserService(
	repo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	universities UniversityService,
	univRepo repository.UniversityRepository,
	producer interfaces.ProducerHandler,
	uploader interfaces.Uploader,
	auth helper.Auth,
) UserService {
	return &userService{
		repo:         repo,
		tokenRepo:    tokenRepo,
		universities: universities,
		univRepo:     univRepo,
		producer:     producer,
		uploader:     uploader,
		auth:         auth,
	}
}

func (u *userService) Register(input dto.RegisterRequest) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	name := strings.TrimSpace(input.Name)
	password := input.Password

	if email == "" || name == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidInput
	}
	if !utils.IsInstitutionalEmail(email) {
		return nil, ErrNonInstitutional
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	if existing, err := u.repo.FindUserByEmail(email); err == nil && existing != nil && existing.ID != 0 {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	universityName := strings.TrimSpace(input.University)
	if universityName == "" {
		if emailDomain, derr := utils.ExtractEmailDomain(email); derr == nil {
			universityName = u.universities.NameForDomain(emailDomain)
		}
	}

	newUser := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashedPassword),
		Department:   strings.TrimSpace(input.Department),
		University:   universityName,
		IsVerified:   false,
	}

	usr, err := u.repo.CreateUser(newUser)
	if err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	// Fire and forget: a dead broker or mailer must not fail registration.
	u.issueVerification(usr)

	return usr, nil
}

func (u *userService) issueVerification(usr *domain.User) {
	token := &domain.VerificationToken{
		UserID:    usr.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(verificationTokenTTL),
	}
	if err := u.tokenRepo.IssueVerificationToken(token); err != nil {
		log.Printf("issue verification token for user %d error: %v", usr.ID, err)
		return
	}

	u.publishEvent(dto.EventVerifyEmail, dto.VerifyEmailEvent{
		UserID:    usr.ID,
		Email:     usr.Email,
		Name:      usr.Name,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.Format(time.RFC3339),
	})
}

func (u *userService) publishEvent(key string, payload interface{}) {
	if u.producer == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal %s event error: %v", key, err)
		return
	}
	if err := u.producer.PublishMessage([]byte(key), raw); err != nil {
		log.Printf("publish %s event error: %v", key, err)
	}
}

func (u *userService) Login(input dto.UserLogin) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password

	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := u.repo.FindUserByEmail(email)
	if err != nil || user == nil || user.ID == 0 {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, &NeedsVerificationError{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
		}
	}

	if err := u.auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	university := u.attachUniversity(user)

	token, err := u.auth.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: user, University: university}, nil
}

// attachUniversity resolves the user's university from the email domain and
// refreshes the denormalized copies. Every step is best effort.
func (u *userService) attachUniversity(user *domain.User) *domain.University {
	university, err := u.universities.ResolveFromEmail(user.Email)
	if err != nil {
		return UnknownUniversity()
	}

	if university.ID > 0 {
		if err := u.univRepo.LinkUser(user.ID, university.ID); err != nil {
			log.Printf("link user %d to university %d error: %v", user.ID, university.ID, err)
		}
		if university.Name != "" && user.University != university.Name {
			user.University = university.Name
			if err := u.repo.SaveUser(user); err != nil {
				log.Printf("refresh university name for user %d error: %v", user.ID, err)
			}
		}
	}
	return university
}

func (u *userService) Authenticate(c *fiber.Ctx) (*domain.User, error) {
	v := c.Locals("userID")
	userID, ok := v.(uint)
	if !ok || userID == 0 {
		return nil, errors.New("unauthorized")
	}
	user, err := u.repo.FindUserById(userID)
	if err != nil || user == nil {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (u *userService) VerifyEmail(token string) (*VerifyResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	row, err := u.tokenRepo.FindVerificationToken(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	if time.Now().After(row.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	user, err := u.repo.FindUserById(row.UserID)
	if err != nil || user == nil {
		return nil, ErrTokenInvalid
	}

	if user.IsVerified {
		// Single use either way: drop the token, report success.
		if err := u.tokenRepo.DeleteVerificationToken(token); err != nil {
			log.Printf("delete consumed verification token error: %v", err)
		}
		return &VerifyResult{AlreadyVerified: true}, nil
	}

	user.IsVerified = true
	if err := u.repo.SaveUser(user); err != nil {
		return nil, err
	}

	university := u.attachUniversity(user)

	if err := u.tokenRepo.DeleteVerificationToken(token); err != nil {
		log.Printf("delete consumed verification token error: %v", err)
	}

	return &VerifyResult{University: university}, nil
}

func (u *userService) ResendVerification(input dto.ResendVerificationRequest) error {
	if input.UserID == 0 || input.Email == "" || input.Name == "" {
		return ErrInvalidInput
	}

	user, err := u.repo.FindUserById(input.UserID)
	if err != nil || user == nil {
		return ErrNotFound
	}

	token := &domain.VerificationToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(verificationTokenTTL),
	}
	if err := u.tokenRepo.IssueVerificationToken(token); err != nil {
		return err
	}

	u.publishEvent(dto.EventVerifyEmail, dto.VerifyEmailEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.Format(time.RFC3339),
	})
	return nil
}

func (u *userService) ForgotPassword(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ErrInvalidInput
	}
	if !utils.IsInstitutionalEmail(email) {
		return ErrNonInstitutional
	}

	user, err := u.repo.FindUserByEmail(email)
	if err != nil || user == nil {
		// Unknown address: pretend success, no account enumeration.
		return nil
	}

	if !user.IsVerified {
		return ErrNotVerified
	}

	token := &domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := u.tokenRepo.IssueResetToken(token); err != nil {
		return err
	}

	u.publishEvent(dto.EventResetPassword, dto.ResetPasswordEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.Format(time.RFC3339),
	})
	return nil
}

func (u *userService) VerifyResetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenInvalid
	}

	row, err := u.tokenRepo.FindResetToken(token)
	if err != nil {
		return ErrTokenInvalid
	}
	if time.Now().After(row.ExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}

func (u *userService) ResetPassword(input dto.ResetPasswordRequest) error {
	token := strings.TrimSpace(input.Token)
	password := input.Password

	if token == "" || password == "" {
		return ErrInvalidInput
	}
	if len(password) < minPasswordLen {
		return ErrWeakPassword
	}

	row, err := u.tokenRepo.FindResetToken(token)
	if err != nil {
		return ErrTokenInvalid
	}
	if time.Now().After(row.ExpiresAt) {
		return ErrTokenExpired
	}

	user, err := u.repo.FindUserById(row.UserID)
	if err != nil || user == nil {
		return ErrTokenInvalid
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	user.PasswordHash = string(hashedPassword)
	if err := u.repo.SaveUser(user); err != nil {
		return err
	}

	return u.tokenRepo.DeleteResetToken(token)
}

// SyncProfile applies COALESCE semantics: only supplied fields overwrite.
func (u *userService) SyncProfile(ctx context.Context, userID uint, input dto.ProfileSyncRequest) (*domain.User, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	user, err := u.repo.FindUserById(userID)
	if err != nil || user == nil {
		return nil, ErrNotFound
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Department != nil {
		user.Department = strings.TrimSpace(*input.Department)
	}
	if input.ProfileImage != nil && *input.ProfileImage != "" {
		user.ProfileImage = u.storeProfileImage(ctx, *input.ProfileImage)
	}

	if err := u.repo.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userService) storeProfileImage(ctx context.Context, image string) string {
	if u.uploader == nil || !strings.HasPrefix(image, "data:") {
		return image
	}
	raw, err := pkgutils.DecodeDataURI(image)
	if err != nil {
		return image
	}
	normalized, err := pkgutils.NormalizeToJPG(raw, 600, 85)
	if err != nil {
		return image
	}
	url, err := u.uploader.UploadBytes(ctx, "profiles", uuid.NewString(), normalized)
	if err != nil {
		log.Printf("upload profile image error: %v", err)
		return image
	}
	return url
}

// FetchProfile resolves the university annotation by NAME, not by a stored
// id, so a renamed or re-created university row is picked up fresh.
func (u *userService) FetchProfile(userID uint) (*dto.UserResponse, error) {
	user, err := u.repo.FindUserById(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	resp := userToResponse(user, true)

	if user.University != "" {
		if university, err := u.univRepo.FindByName(user.University); err == nil {
			resp.UniversityID = &university.ID
			resp.UniversitySlug = university.Slug
		}
	}

	return resp, nil
}

func (u *userService) GetPublicUser(userID uint) (*dto.UserResponse, error) {
	user, err := u.repo.FindUserById(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return userToResponse(user, false), nil
}

func userToResponse(user *domain.User, includeEmail bool) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Department:   user.Department,
		University:   user.University,
		ProfileImage: user.ProfileImage,
		IsVerified:   user.IsVerified,
	}
	if includeEmail {
		resp.Email = user.Email
	}
	return resp
}
