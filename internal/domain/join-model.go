package domain

// ItemUniversity scopes an item to a university. The schema allows many
// universities per item; the client only ever attaches one.
type ItemUniversity struct {
	ItemID       string `gorm:"primaryKey;type:varchar(64)" json:"item_id"`
	UniversityID uint   `gorm:"primaryKey" json:"university_id"`
}

type UserUniversity struct {
	UserID       uint `gorm:"primaryKey" json:"user_id"`
	UniversityID uint `gorm:"primaryKey" json:"university_id"`
}
