package domain

import "time"

type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available"
	// Declared for parity with the client model; no flow sets it.
	ItemStatusReserved ItemStatus = "reserved"
	ItemStatusSold     ItemStatus = "sold"
)

// Item ids are generated client-side (uuid strings) so listings can be created
// offline and pushed later; the id is the reconciliation key.
type Item struct {
	ID          string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Price       float64    `gorm:"not null" json:"price"`
	Description string     `gorm:"type:text" json:"description"`
	Category    string     `gorm:"type:varchar(100)" json:"category"`
	Condition   string     `gorm:"type:varchar(100)" json:"condition"`
	Location    string     `gorm:"type:varchar(255)" json:"location"`
	ImageURL    string     `gorm:"type:text" json:"image_url,omitempty"`
	Status      ItemStatus `gorm:"type:varchar(20);not null;default:available" json:"status"`

	// Seller snapshot, denormalized at insert time. Not a live reference:
	// later profile edits do not rewrite existing rows.
	SellerID         uint   `gorm:"index;not null" json:"seller_id"`
	SellerName       string `json:"seller_name"`
	SellerDepartment string `json:"seller_department,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
