package dto

type SellerInfo struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// ItemResponse is the wire shape shared by every item read path: the seller
// snapshot inlined, plus the university annotation when a join row exists.
type ItemResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Price          float64    `json:"price"`
	Description    string     `json:"description"`
	Image          string     `json:"image,omitempty"`
	Category       string     `json:"category"`
	Condition      string     `json:"condition"`
	Location       string     `json:"location"`
	Status         string     `json:"status"`
	CreatedAt      string     `json:"createdAt"`
	Seller         SellerInfo `json:"seller"`
	UniversityID   *uint      `json:"universityId,omitempty"`
	UniversityName string     `json:"universityName,omitempty"`
	UniversitySlug string     `json:"universitySlug,omitempty"`
}

type CreateItemRequest struct {
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Condition    string  `json:"condition"`
	Location     string  `json:"location"`
	Image        string  `json:"image,omitempty"`
	UniversityID uint    `json:"universityId"`
}

type SetItemStatusRequest struct {
	Status string `json:"status"`
}

// ClientItem is the locally cached copy a client pushes during sync.
// Status and seller come along for the ride; the id drives upsert.
type ClientItem struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Price        float64    `json:"price"`
	Description  string     `json:"description"`
	Image        string     `json:"image,omitempty"`
	Category     string     `json:"category"`
	Condition    string     `json:"condition"`
	Location     string     `json:"location"`
	Status       string     `json:"status"`
	CreatedAt    string     `json:"createdAt,omitempty"`
	Seller       SellerInfo `json:"seller"`
	UniversityID *uint      `json:"universityId,omitempty"`
}

type SyncItemsRequest struct {
	Items []ClientItem `json:"items"`
}

type SyncItemsResponse struct {
	Items           []ItemResponse `json:"items"`
	UniversityItems []ItemResponse `json:"universityItems"`
}

type ItemSearchFilters struct {
	Category  string
	Condition string
	MinPrice  *float64
	MaxPrice  *float64
	Search    string
}

type PagedItemsResponse struct {
	Items []ItemResponse `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
