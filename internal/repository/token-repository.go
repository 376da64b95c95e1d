package repository

import (
	"github.com/campus-agora/market-svc/internal/domain"
	"gorm.io/gorm"
)

type TokenRepository interface {
	// Issue* delete any live token for the user before inserting, keeping
	// at most one row per user per purpose.
	IssueVerificationToken(token *domain.VerificationToken) error
	FindVerificationToken(token string) (*domain.VerificationToken, error)
	DeleteVerificationToken(token string) error

	IssueResetToken(token *domain.PasswordResetToken) error
	FindResetToken(token string) (*domain.PasswordResetToken, error)
	DeleteResetToken(token string) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) IssueVerificationToken(token *domain.VerificationToken) error {
	if err := r.db.Where("user_id = ?", token.UserID).
		Delete(&domain.VerificationToken{}).Error; err != nil {
		return err
	}
	return r.db.Create(token).Error
}

func (r *tokenRepository) FindVerificationToken(token string) (*domain.VerificationToken, error) {
	var row domain.VerificationToken
	if err := r.db.First(&row, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *tokenRepository) DeleteVerificationToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&domain.VerificationToken{}).Error
}

func (r *tokenRepository) IssueResetToken(token *domain.PasswordResetToken) error {
	if err := r.db.Where("user_id = ?", token.UserID).
		Delete(&domain.PasswordResetToken{}).Error; err != nil {
		return err
	}
	return r.db.Create(token).Error
}

func (r *tokenRepository) FindResetToken(token string) (*domain.PasswordResetToken, error) {
	var row domain.PasswordResetToken
	if err := r.db.First(&row, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *tokenRepository) DeleteResetToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&domain.PasswordResetToken{}).Error
}
