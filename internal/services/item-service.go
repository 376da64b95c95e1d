package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/campus-agora/market-svc/internal/cache"
	"github.com/campus-agora/market-svc/internal/domain"
	"github.com/campus-agora/market-svc/internal/dto"
	"github.com/campus-agora/market-svc/internal/interfaces"
	"github.com/campus-agora/market-svc/internal/repository"
	pkgutils "github.com/campus-agora/market-svc/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	universityItemsTTL   = time.Minute
	universityItemsLimit = 20
	imageMaxWidth        = 1200
	imageJPGQuality      = 85
)

type ItemService interface {
	// SyncItems upserts the client's cached items for one seller. The loop
	// has no cross-row atomicity: the first failure aborts and is returned,
	// rows written before it stay. Absent items are never deleted.
	SyncItems(sellerID uint, clientItems []dto.ClientItem) error

	FetchItemsBySeller(sellerID uint) ([]dto.ItemResponse, error)
	FetchItemsByUniversity(universityID uint, limit int) ([]dto.ItemResponse, error)
	FetchItemByID(itemID string) (*dto.ItemResponse, error)
	SearchUniversityItems(slug string, page, limit int, filters dto.ItemSearchFilters) (*dto.PagedItemsResponse, error)

	CreateItem(ctx context.Context, seller *domain.User, input dto.CreateItemRequest) (*dto.ItemResponse, error)
	SetStatus(itemID string, callerID uint, status string) error
}

type itemService struct {
	repo           repository.ItemRepository
	universityRepo repository.UniversityRepository
	uploader       interfaces.Uploader
	cache          *cache.Cache
}

func NewItemService(
	repo repository.ItemRepository,
	universityRepo repository.UniversityRepository,
	uploader interfaces.Uploader,
	c *cache.Cache,
) ItemService {
	return &itemService{
		repo:           repo,
		universityRepo: universityRepo,
		uploader:       uploader,
		cache:          c,
	}
}

func universityItemsKey(universityID uint) string {
	return fmt.Sprintf("university_items:%d", universityID)
}

func (s *itemService) SyncItems(sellerID uint, clientItems []dto.ClientItem) error {
	if sellerID == 0 {
		return ErrInvalidInput
	}

	existingIDs, err := s.repo.ListIDsBySeller(sellerID)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existingIDs))
	for _, id := range existingIDs {
		known[id] = true
	}

	touched := make(map[uint]bool)

	for _, ci := range clientItems {
		if strings.TrimSpace(ci.ID) == "" {
			continue
		}

		item := itemFromClient(sellerID, ci)

		if known[item.ID] {
			if err := s.repo.UpdateFields(item); err != nil {
				return err
			}
		} else {
			if err := s.repo.Insert(item); err != nil {
				return err
			}
			if ci.UniversityID != nil && *ci.UniversityID > 0 {
				if err := s.repo.AttachUniversity(item.ID, *ci.UniversityID); err != nil {
					return err
				}
			}
		}

		if ci.UniversityID != nil && *ci.UniversityID > 0 {
			touched[*ci.UniversityID] = true
		}
	}

	s.invalidateUniversities(touched)
	return nil
}

func (s *itemService) FetchItemsBySeller(sellerID uint) ([]dto.ItemResponse, error) {
	rows, err := s.repo.FindBySeller(sellerID)
	if err != nil {
		return nil, err
	}
	return mapItemRows(rows), nil
}

func (s *itemService) FetchItemsByUniversity(universityID uint, limit int) ([]dto.ItemResponse, error) {
	if limit <= 0 {
		limit = universityItemsLimit
	}

	ctx := context.Background()
	key := universityItemsKey(universityID)

	// The cache only carries the default page size.
	if limit == universityItemsLimit {
		var cached []dto.ItemResponse
		if s.cache.GetJSON(ctx, key, &cached) {
			return cached, nil
		}
	}

	rows, err := s.repo.FindByUniversity(universityID, limit)
	if err != nil {
		return nil, err
	}

	out := mapItemRows(rows)
	if limit == universityItemsLimit {
		s.cache.SetJSON(ctx, key, out, universityItemsTTL)
	}
	return out, nil
}

func (s *itemService) FetchItemByID(itemID string) (*dto.ItemResponse, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, ErrInvalidInput
	}

	row, err := s.repo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	resp := mapItemRow(*row)
	return &resp, nil
}

func (s *itemService) SearchUniversityItems(slug string, page, limit int, filters dto.ItemSearchFilters) (*dto.PagedItemsResponse, error) {
	university, err := s.universityRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = universityItemsLimit
	}
	offset := (page - 1) * limit

	rows, total, err := s.repo.SearchByUniversity(university.ID, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	return &dto.PagedItemsResponse{
		Items: mapItemRows(rows),
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *itemService) CreateItem(ctx context.Context, seller *domain.User, input dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if seller == nil || seller.ID == 0 {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Description) == "" ||
		strings.TrimSpace(input.Category) == "" ||
		strings.TrimSpace(input.Condition) == "" ||
		strings.TrimSpace(input.Location) == "" {
		return nil, ErrInvalidInput
	}
	if input.Price < 0 {
		return nil, ErrInvalidInput
	}
	if input.UniversityID == 0 {
		return nil, ErrInvalidInput
	}

	item := &domain.Item{
		ID:               uuid.NewString(),
		Title:            strings.TrimSpace(input.Title),
		Price:            input.Price,
		Description:      input.Description,
		Category:         input.Category,
		Condition:        input.Condition,
		Location:         input.Location,
		ImageURL:         s.storeImage(ctx, input.Image),
		Status:           domain.ItemStatusAvailable,
		SellerID:         seller.ID,
		SellerName:       seller.Name,
		SellerDepartment: seller.Department,
	}

	if err := s.repo.Insert(item); err != nil {
		return nil, err
	}

	// Best effort: a missing join row only hides the item from the
	// university listing, it does not lose the listing itself.
	if err := s.repo.AttachUniversity(item.ID, input.UniversityID); err != nil {
		log.Printf("attach item %s to university %d error: %v", item.ID, input.UniversityID, err)
	}

	s.invalidateUniversities(map[uint]bool{input.UniversityID: true})

	row, err := s.repo.FindByID(item.ID)
	if err != nil {
		return nil, err
	}
	resp := mapItemRow(*row)
	return &resp, nil
}

func (s *itemService) SetStatus(itemID string, callerID uint, status string) error {
	st := domain.ItemStatus(strings.TrimSpace(strings.ToLower(status)))
	if st != domain.ItemStatusAvailable && st != domain.ItemStatusSold {
		return ErrInvalidInput
	}

	sellerID, err := s.repo.GetSellerID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if sellerID != callerID {
		return ErrForbidden
	}

	if err := s.repo.SetStatus(itemID, st); err != nil {
		return err
	}

	if row, err := s.repo.FindByID(itemID); err == nil && row.UniversityID != nil {
		s.invalidateUniversities(map[uint]bool{*row.UniversityID: true})
	}
	return nil
}

// storeImage uploads a data-URI photo and returns its URL. Anything it
// cannot handle (no uploader, not a data URI, undecodable) passes through
// or degrades to the raw value so a bad photo never fails the listing.
func (s *itemService) storeImage(ctx context.Context, image string) string {
	if image == "" {
		return ""
	}
	if s.uploader == nil || !strings.HasPrefix(image, "data:") {
		return image
	}

	raw, err := pkgutils.DecodeDataURI(image)
	if err != nil {
		log.Printf("decode item image error: %v", err)
		return image
	}

	normalized, err := pkgutils.NormalizeToJPG(raw, imageMaxWidth, imageJPGQuality)
	if err != nil {
		log.Printf("normalize item image error: %v", err)
		return image
	}

	url, err := s.uploader.UploadBytes(ctx, "items", uuid.NewString(), normalized)
	if err != nil {
		log.Printf("upload item image error: %v", err)
		return image
	}
	return url
}

func (s *itemService) invalidateUniversities(ids map[uint]bool) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for id := range ids {
		keys = append(keys, universityItemsKey(id))
	}
	s.cache.Delete(context.Background(), keys...)
}

func itemFromClient(sellerID uint, ci dto.ClientItem) *domain.Item {
	status := domain.ItemStatus(ci.Status)
	if status == "" {
		status = domain.ItemStatusAvailable
	}
	return &domain.Item{
		ID:               ci.ID,
		Title:            ci.Title,
		Price:            ci.Price,
		Description:      ci.Description,
		Category:         ci.Category,
		Condition:        ci.Condition,
		Location:         ci.Location,
		ImageURL:         ci.Image,
		Status:           status,
		SellerID:         sellerID,
		SellerName:       ci.Seller.Name,
		SellerDepartment: ci.Seller.Department,
	}
}

func mapItemRow(row repository.ItemRow) dto.ItemResponse {
	resp := dto.ItemResponse{
		ID:          row.ID,
		Title:       row.Title,
		Price:       row.Price,
		Description: row.Description,
		Image:       row.ImageURL,
		Category:    row.Category,
		Condition:   row.Condition,
		Location:    row.Location,
		Status:      row.Status,
		CreatedAt:   row.CreatedAt.Format(time.RFC3339),
		Seller: dto.SellerInfo{
			ID:         row.SellerID,
			Name:       row.SellerName,
			Department: row.SellerDepartment,
		},
		UniversityID: row.UniversityID,
	}
	if row.UniversityName != nil {
		resp.UniversityName = *row.UniversityName
	}
	if row.UniversitySlug != nil {
		resp.UniversitySlug = *row.UniversitySlug
	}
	return resp
}

func mapItemRows(rows []repository.ItemRow) []dto.ItemResponse {
	out := make([]dto.ItemResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapItemRow(row))
	}
	return out
}
