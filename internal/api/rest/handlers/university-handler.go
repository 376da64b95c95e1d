package handlers

import (
	"errors"
	"strconv"

	"github.com/campus-agora/market-svc/internal/dto"
	"github.com/campus-agora/market-svc/internal/helper/utils"
	"github.com/campus-agora/market-svc/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UniversityHandler struct {
	svc     services.UniversityService
	itemSvc services.ItemService
}

func NewUniversityHandler(svc services.UniversityService, itemSvc services.ItemService) *UniversityHandler {
	return &UniversityHandler{svc: svc, itemSvc: itemSvc}
}

func (h *UniversityHandler) SetupRoutes(app *fiber.App) {
	universities := app.Group("/api/universities")

	universities.Get("/by-domain", h.ByDomain)
	universities.Get("/by-name", h.ByName)
	universities.Get("/:slug/details", h.Details)
	universities.Get("/:slug/items", h.Items)
}

// ByDomain resolves an email domain, creating the university row on
// first sight. It never 404s: unresolvable domains come back as the
// unknown sentinel.
func (h *UniversityHandler) ByDomain(ctx *fiber.Ctx) error {
	emailDomain := ctx.Query("domain")
	if emailDomain == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "domain query parameter is required")
	}

	university := h.svc.ResolveByDomain(emailDomain)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.UniversityResponse{
		ID:     university.ID,
		Name:   university.Name,
		Slug:   university.Slug,
		Domain: university.Domain,
	})
}

func (h *UniversityHandler) ByName(ctx *fiber.Ctx) error {
	name := ctx.Query("name")
	if name == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "name query parameter is required")
	}

	lookup, err := h.svc.LookupByName(name)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, lookup)
}

func (h *UniversityHandler) Details(ctx *fiber.Ctx) error {
	slug := ctx.Params("slug")

	details, err := h.svc.Details(slug)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "University not found")
		}
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, details)
}

// Items is the campus feed keyed by slug, with the same paging and
// filter surface as /api/items.
func (h *UniversityHandler) Items(ctx *fiber.Ctx) error {
	slug := ctx.Params("slug")

	page := parsePositiveInt(ctx.Query("page"), 1)
	limit := parsePositiveInt(ctx.Query("limit"), 20)

	filters := dto.ItemSearchFilters{
		Category:  ctx.Query("category"),
		Condition: ctx.Query("condition"),
		Search:    ctx.Query("search"),
	}
	if v, err := strconv.ParseFloat(ctx.Query("minPrice"), 64); err == nil {
		filters.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(ctx.Query("maxPrice"), 64); err == nil {
		filters.MaxPrice = &v
	}

	result, err := h.itemSvc.SearchUniversityItems(slug, page, limit, filters)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "University not found")
		}
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, result)
}
