package services

import (
	"errors"
	"log"
	"strings"

	"github.com/campus-agora/market-svc/internal/domain"
	"github.com/campus-agora/market-svc/internal/dto"
	"github.com/campus-agora/market-svc/internal/helper"
	"github.com/campus-agora/market-svc/internal/helper/utils"
	"github.com/campus-agora/market-svc/internal/repository"
	pkgutils "github.com/campus-agora/market-svc/pkg/utils"
	"gorm.io/gorm"
)

// Domains we can name properly; everything else gets a derived name.
var knownDomains = map[string]string{
	"harvard.edu":  "Harvard University",
	"stanford.edu": "Stanford University",
	"mit.edu":      "Massachusetts Institute of Technology",
	"berkeley.edu": "University of California, Berkeley",
	"ucla.edu":     "University of California, Los Angeles",
}

type UniversityService interface {
	// ResolveFromEmail errors only on a malformed address; resolution
	// failures collapse into the sentinel record (id 0, slug "unknown").
	ResolveFromEmail(email string) (*domain.University, error)
	ResolveByDomain(domain string) *domain.University
	NameForDomain(domain string) string

	FindBySlug(slug string) (*domain.University, error)
	LookupByName(name string) (*dto.UniversityLookupResponse, error)
	Details(slug string) (*dto.UniversityDetailsResponse, error)
}

type universityService struct {
	repo repository.UniversityRepository
}

func NewUniversityService(repo repository.UniversityRepository) UniversityService {
	return &universityService{repo: repo}
}

// UnknownUniversity is the failure sentinel: callers treat id 0 as
// "resolution failed, proceed without a university association".
func UnknownUniversity() *domain.University {
	return &domain.University{ID: 0, Name: "Unknown University", Slug: "unknown"}
}

func (s *universityService) ResolveFromEmail(email string) (*domain.University, error) {
	emailDomain, err := utils.ExtractEmailDomain(email)
	if err != nil {
		return nil, ErrInvalidInput
	}
	return s.ResolveByDomain(emailDomain), nil
}

func (s *universityService) ResolveByDomain(rawDomain string) *domain.University {
	d := normalizeDomain(rawDomain)
	if d == "" {
		return UnknownUniversity()
	}

	if existing, err := s.repo.FindByDomain(d); err == nil {
		return existing
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("university lookup error for %q: %v", d, err)
		return UnknownUniversity()
	}

	name := s.NameForDomain(d)
	created := &domain.University{
		Name:   name,
		Domain: d,
		Slug:   pkgutils.Slugify(name),
	}

	if err := s.repo.AddUniversity(created); err != nil {
		// A concurrent first-sight resolution may have won the insert;
		// the unique index on domain makes the re-read authoritative.
		if helper.IsUniqueViolation(err) {
			if existing, rerr := s.repo.FindByDomain(d); rerr == nil {
				return existing
			}
		}
		log.Printf("university create error for %q: %v", d, err)
		return UnknownUniversity()
	}

	return created
}

// NameForDomain derives a display name without touching storage: the static
// table first, otherwise the label before the TLD, capitalized, plus
// "University".
func (s *universityService) NameForDomain(rawDomain string) string {
	d := normalizeDomain(rawDomain)
	if name, ok := knownDomains[d]; ok {
		return name
	}

	parts := strings.Split(d, ".")
	if len(parts) < 2 {
		return "Unknown University"
	}
	label := parts[len(parts)-2]
	if label == "" {
		return "Unknown University"
	}
	return capitalize(label) + " University"
}

func (s *universityService) FindBySlug(slug string) (*domain.University, error) {
	u, err := s.repo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *universityService) LookupByName(name string) (*dto.UniversityLookupResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	u, err := s.repo.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown name: hand back just the derived slug.
			return &dto.UniversityLookupResponse{
				Name:   name,
				Slug:   pkgutils.Slugify(name),
				Exists: false,
			}, nil
		}
		return nil, err
	}

	return &dto.UniversityLookupResponse{
		ID:     u.ID,
		Name:   u.Name,
		Slug:   u.Slug,
		Domain: u.Domain,
		Exists: true,
	}, nil
}

func (s *universityService) Details(slug string) (*dto.UniversityDetailsResponse, error) {
	u, err := s.FindBySlug(slug)
	if err != nil {
		return nil, err
	}

	resp := &dto.UniversityDetailsResponse{
		University: dto.UniversityResponse{
			ID:     u.ID,
			Name:   u.Name,
			Slug:   u.Slug,
			Domain: u.Domain,
		},
	}

	if detail, err := s.repo.FindDetail(u.ID); err == nil {
		resp.Details = detail
	}

	return resp, nil
}

// normalizeDomain lowercases and, when the value has no dot at all,
// prefixes "www.". A heuristic, not a validator.
func normalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimPrefix(d, "@")
	if d == "" {
		return ""
	}
	if !strings.HasPrefix(d, "www.") && !strings.Contains(d, ".") {
		d = "www." + d
	}
	return d
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
