package domain

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	Department   string    `json:"department,omitempty"`
	// Display name of the university, denormalized from the email domain.
	// Refreshed best-effort at login/verify; may drift from universities.name.
	University   string    `json:"university,omitempty"`
	ProfileImage string    `gorm:"type:text" json:"profile_image,omitempty"`
	IsVerified   bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
