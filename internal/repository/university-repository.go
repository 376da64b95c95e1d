package repository

import (
	"github.com/campus-agora/market-svc/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UniversityRepository interface {
	FindByID(id uint) (*domain.University, error)
	FindByDomain(domain string) (*domain.University, error)
	FindByName(name string) (*domain.University, error)
	FindBySlug(slug string) (*domain.University, error)
	FindDetail(universityID uint) (*domain.UniversityDetail, error)
	List(limit, offset int) ([]domain.University, error)
	AddUniversity(university *domain.University) error
	LinkUser(userID, universityID uint) error
}

type universityRepository struct {
	db *gorm.DB
}

func NewUniversityRepository(db *gorm.DB) UniversityRepository {
	return &universityRepository{db: db}
}

func (u *universityRepository) FindByID(id uint) (*domain.University, error) {
	var university domain.University
	if err := u.db.First(&university, id).Error; err != nil {
		return nil, err
	}
	return &university, nil
}

func (u *universityRepository) FindByDomain(emailDomain string) (*domain.University, error) {
	var university domain.University
	if err := u.db.First(&university, "domain = ?", emailDomain).Error; err != nil {
		return nil, err
	}
	return &university, nil
}

func (u *universityRepository) FindByName(name string) (*domain.University, error) {
	var university domain.University
	if err := u.db.First(&university, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &university, nil
}

func (u *universityRepository) FindBySlug(slug string) (*domain.University, error) {
	var university domain.University
	if err := u.db.First(&university, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &university, nil
}

func (u *universityRepository) FindDetail(universityID uint) (*domain.UniversityDetail, error) {
	var detail domain.UniversityDetail
	if err := u.db.First(&detail, "university_id = ?", universityID).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

func (u *universityRepository) List(limit, offset int) ([]domain.University, error) {
	var universities []domain.University

	err := u.db.Order("name ASC").Limit(limit).Offset(offset).Find(&universities).Error
	if err != nil {
		return nil, err
	}
	return universities, nil
}

func (u *universityRepository) AddUniversity(university *domain.University) error {
	return u.db.Create(university).Error
}

// LinkUser records the user-university association; replays are ignored.
func (u *universityRepository) LinkUser(userID, universityID uint) error {
	return u.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.UserUniversity{UserID: userID, UniversityID: universityID}).Error
}
