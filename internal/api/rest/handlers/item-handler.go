package handlers

import (
	"errors"
	"strconv"

	"github.com/campus-agora/market-svc/internal/api/rest/middleware"
	"github.com/campus-agora/market-svc/internal/dto"
	"github.com/campus-agora/market-svc/internal/helper"
	"github.com/campus-agora/market-svc/internal/helper/utils"
	"github.com/campus-agora/market-svc/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ItemHandler struct {
	svc     services.ItemService
	userSvc services.UserService
	auth    helper.Auth
}

func NewItemHandler(svc services.ItemService, userSvc services.UserService, auth helper.Auth) *ItemHandler {
	return &ItemHandler{svc: svc, userSvc: userSvc, auth: auth}
}

func (h *ItemHandler) SetupRoutes(app *fiber.App) {
	items := app.Group("/api/items")

	items.Get("/", h.ListItems)
	items.Get("/:itemID", h.GetItem)

	items.Post("/", middleware.AuthMiddleware(h.auth), h.CreateItem)
	items.Patch("/:itemID/status", middleware.AuthMiddleware(h.auth), h.SetStatus)
}

// ListItems serves a university feed: ?university=<slug> or
// ?universityId=<id>, plus optional paging and filters.
func (h *ItemHandler) ListItems(ctx *fiber.Ctx) error {
	if rawID := ctx.Query("universityId"); rawID != "" {
		universityID, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil || universityID == 0 {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid universityId")
		}
		limit := parsePositiveInt(ctx.Query("limit"), 20)
		items, err := h.svc.FetchItemsByUniversity(uint(universityID), limit)
		if err != nil {
			return respondError(ctx, err)
		}
		return utils.ResponseSuccess(ctx, fiber.StatusOK, items)
	}

	slug := ctx.Query("university")
	if slug == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "university or universityId query parameter is required")
	}

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

	result, err := h.svc.SearchUniversityItems(slug, page, limit, filters)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "University not found")
		}
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, result)
}

func (h *ItemHandler) GetItem(ctx *fiber.Ctx) error {
	itemID := ctx.Params("itemID")

	item, err := h.svc.FetchItemByID(itemID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "Item not found")
		}
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, item)
}

func (h *ItemHandler) CreateItem(ctx *fiber.Ctx) error {
	user, err := h.userSvc.Authenticate(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.CreateItemRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	item, err := h.svc.CreateItem(ctx.Context(), user, requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, item)
}

func (h *ItemHandler) SetStatus(ctx *fiber.Ctx) error {
	userID, ok := ctx.Locals("userID").(uint)
	if !ok || userID == 0 {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	itemID := ctx.Params("itemID")

	var requestBody dto.SetItemStatusRequest
	if err := ctx.BodyParser(&requestBody); err != nil || requestBody.Status == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "status is required")
	}

	if err := h.svc.SetStatus(itemID, userID, requestBody.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "status must be available or sold")
		case errors.Is(err, services.ErrNotFound):
			return utils.ResponseError(ctx, fiber.StatusNotFound, "Item not found")
		case errors.Is(err, services.ErrForbidden):
			return utils.ResponseError(ctx, fiber.StatusForbidden, "Only the seller can update this item")
		default:
			return respondError(ctx, err)
		}
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"id": itemID, "status": requestBody.Status})
}

func parsePositiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
