package repository

import (
	"time"

	"github.com/campus-agora/market-svc/internal/domain"
	"github.com/campus-agora/market-svc/internal/dto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemRow is an item joined with its (optional) university annotation.
type ItemRow struct {
	ID               string
	Title            string
	Price            float64
	Description      string
	Category         string
	Condition        string
	Location         string
	ImageURL         string `gorm:"column:image_url"`
	Status           string
	SellerID         uint
	SellerName       string
	SellerDepartment string
	CreatedAt        time.Time
	UniversityID     *uint
	UniversityName   *string
	UniversitySlug   *string
}

type ItemRepository interface {
	ListIDsBySeller(sellerID uint) ([]string, error)
	Insert(item *domain.Item) error
	UpdateFields(item *domain.Item) error
	AttachUniversity(itemID string, universityID uint) error

	FindBySeller(sellerID uint) ([]ItemRow, error)
	FindByUniversity(universityID uint, limit int) ([]ItemRow, error)
	FindByID(itemID string) (*ItemRow, error)
	SearchByUniversity(universityID uint, filters dto.ItemSearchFilters, limit, offset int) ([]ItemRow, int64, error)

	GetSellerID(itemID string) (uint, error)
	SetStatus(itemID string, status domain.ItemStatus) error
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

const itemSelect = `i.id, i.title, i.price, i.description, i.category, i.condition,
	i.location, i.image_url, i.status, i.seller_id, i.seller_name,
	i.seller_department, i.created_at,
	iu.university_id, u.name AS university_name, u.slug AS university_slug`

func (r *itemRepository) ListIDsBySeller(sellerID uint) ([]string, error) {
	var ids []string
	err := r.db.Model(&domain.Item{}).
		Where("seller_id = ?", sellerID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Insert ignores an already-present id: two devices pushing the same new
// item must not fail the second sync.
func (r *itemRepository) Insert(item *domain.Item) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(item).Error
}

// UpdateFields rewrites every client-ownable column for the item, scoped to
// its seller.
func (r *itemRepository) UpdateFields(item *domain.Item) error {
	return r.db.Model(&domain.Item{}).
		Where("id = ? AND seller_id = ?", item.ID, item.SellerID).
		Updates(map[string]interface{}{
			"title":       item.Title,
			"price":       item.Price,
			"description": item.Description,
			"category":    item.Category,
			"condition":   item.Condition,
			"location":    item.Location,
			"image_url":   item.ImageURL,
			"status":      item.Status,
			"updated_at":  time.Now(),
		}).Error
}

func (r *itemRepository) AttachUniversity(itemID string, universityID uint) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.ItemUniversity{ItemID: itemID, UniversityID: universityID}).Error
}

func (r *itemRepository) FindBySeller(sellerID uint) ([]ItemRow, error) {
	var rows []ItemRow
	err := r.db.Table("items i").
		Select(itemSelect).
		Joins("LEFT JOIN item_universities iu ON i.id = iu.item_id").
		Joins("LEFT JOIN universities u ON iu.university_id = u.id").
		Where("i.seller_id = ?", sellerID).
		Order("i.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *itemRepository) FindByUniversity(universityID uint, limit int) ([]ItemRow, error) {
	var rows []ItemRow
	err := r.db.Table("items i").
		Select(itemSelect).
		Joins("JOIN item_universities iu ON i.id = iu.item_id").
		Joins("JOIN universities u ON iu.university_id = u.id").
		Where("iu.university_id = ? AND i.status = ?", universityID, domain.ItemStatusAvailable).
		Order("i.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *itemRepository) FindByID(itemID string) (*ItemRow, error) {
	var rows []ItemRow
	err := r.db.Table("items i").
		Select(itemSelect).
		Joins("LEFT JOIN item_universities iu ON i.id = iu.item_id").
		Joins("LEFT JOIN universities u ON iu.university_id = u.id").
		Where("i.id = ?", itemID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *itemRepository) searchQuery(universityID uint, filters dto.ItemSearchFilters) *gorm.DB {
	q := r.db.Table("items i").
		Joins("JOIN item_universities iu ON i.id = iu.item_id").
		Joins("JOIN universities u ON iu.university_id = u.id").
		Where("iu.university_id = ? AND i.status = ?", universityID, domain.ItemStatusAvailable)

	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		q = q.Where("i.title LIKE ? OR i.description LIKE ?", pattern, pattern)
	}
	if filters.Category != "" {
		q = q.Where("i.category = ?", filters.Category)
	}
	if filters.Condition != "" {
		q = q.Where("i.condition = ?", filters.Condition)
	}
	if filters.MinPrice != nil {
		q = q.Where("i.price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		q = q.Where("i.price <= ?", *filters.MaxPrice)
	}
	return q
}

func (r *itemRepository) SearchByUniversity(universityID uint, filters dto.ItemSearchFilters, limit, offset int) ([]ItemRow, int64, error) {
	var total int64
	if err := r.searchQuery(universityID, filters).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ItemRow
	err := r.searchQuery(universityID, filters).
		Select(itemSelect).
		Order("i.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *itemRepository) GetSellerID(itemID string) (uint, error) {
	var item domain.Item
	if err := r.db.Select("id", "seller_id").First(&item, "id = ?", itemID).Error; err != nil {
		return 0, err
	}
	return item.SellerID, nil
}

func (r *itemRepository) SetStatus(itemID string, status domain.ItemStatus) error {
	return r.db.Model(&domain.Item{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
