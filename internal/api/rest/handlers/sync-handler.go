package handlers

import (
	"log"

	"github.com/campus-agora/market-svc/internal/api/rest/middleware"
	"github.com/campus-agora/market-svc/internal/dto"
	"github.com/campus-agora/market-svc/internal/helper"
	"github.com/campus-agora/market-svc/internal/helper/utils"
	"github.com/campus-agora/market-svc/internal/services"
	"github.com/gofiber/fiber/v2"
)

const universityFeedLimit = 20

// SyncHandler serves the client reconciliation endpoints: push local
// items or profile fields, get the authoritative copy back.
type SyncHandler struct {
	itemSvc services.ItemService
	userSvc services.UserService
	univSvc services.UniversityService
	auth    helper.Auth
}

func NewSyncHandler(
	itemSvc services.ItemService,
	userSvc services.UserService,
	univSvc services.UniversityService,
	auth helper.Auth,
) *SyncHandler {
	return &SyncHandler{itemSvc: itemSvc, userSvc: userSvc, univSvc: univSvc, auth: auth}
}

func (h *SyncHandler) SetupRoutes(app *fiber.App) {
	sync := app.Group("/api/sync", middleware.AuthMiddleware(h.auth))

	sync.Get("/items", h.PullItems)
	sync.Post("/items", h.PushItems)
	sync.Get("/profile", h.PullProfile)
	sync.Post("/profile", h.PushProfile)
}

func (h *SyncHandler) PullItems(ctx *fiber.Ctx) error {
	user, err := h.userSvc.Authenticate(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}
	return h.respondWithItems(ctx, user.ID, user.Email)
}

func (h *SyncHandler) PushItems(ctx *fiber.Ctx) error {
	user, err := h.userSvc.Authenticate(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.SyncItemsRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.itemSvc.SyncItems(user.ID, requestBody.Items); err != nil {
		return respondError(ctx, err)
	}
	return h.respondWithItems(ctx, user.ID, user.Email)
}

func (h *SyncHandler) respondWithItems(ctx *fiber.Ctx, userID uint, email string) error {
	items, err := h.itemSvc.FetchItemsBySeller(userID)
	if err != nil {
		return respondError(ctx, err)
	}

	// The campus feed rides along so the client refreshes both views in
	// one round trip. A resolution failure degrades to an empty feed.
	var universityItems []dto.ItemResponse
	if university, err := h.univSvc.ResolveFromEmail(email); err == nil && university.ID > 0 {
		universityItems, err = h.itemSvc.FetchItemsByUniversity(university.ID, universityFeedLimit)
		if err != nil {
			log.Printf("fetch university %d feed error: %v", university.ID, err)
			universityItems = nil
		}
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.SyncItemsResponse{
		Items:           items,
		UniversityItems: universityItems,
	})
}

func (h *SyncHandler) PullProfile(ctx *fiber.Ctx) error {
	userID, ok := ctx.Locals("userID").(uint)
	if !ok || userID == 0 {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := h.userSvc.FetchProfile(userID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, profile)
}

func (h *SyncHandler) PushProfile(ctx *fiber.Ctx) error {
	userID, ok := ctx.Locals("userID").(uint)
	if !ok || userID == 0 {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.ProfileSyncRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if _, err := h.userSvc.SyncProfile(ctx.Context(), userID, requestBody); err != nil {
		return respondError(ctx, err)
	}

	profile, err := h.userSvc.FetchProfile(userID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, profile)
}
