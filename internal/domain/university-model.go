package domain

import "time"

type University struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(255);index" json:"slug"`
	Domain    string    `gorm:"type:varchar(255);uniqueIndex" json:"domain,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UniversityDetail is an optional one-to-one extension row; most universities
// created on first sight from an email domain never get one.
type UniversityDetail struct {
	UniversityID uint   `gorm:"primaryKey" json:"university_id"`
	OfficialName string `gorm:"type:varchar(255)" json:"official_name,omitempty"`
	Description  string `gorm:"type:text" json:"description,omitempty"`
	Location     string `gorm:"type:varchar(255)" json:"location,omitempty"`
	FoundedYear  int    `json:"founded_year,omitempty"`
	Website      string `gorm:"type:varchar(255)" json:"website,omitempty"`
	StudentCount int    `json:"student_count,omitempty"`
	LogoURL      string `gorm:"type:text" json:"logo_url,omitempty"`
}
