package handlers

import (
	"errors"
	"strconv"

	"github.com/campus-agora/market-svc/internal/helper/utils"
	"github.com/campus-agora/market-svc/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	svc     services.UserService
	itemSvc services.ItemService
}

func NewUserHandler(svc services.UserService, itemSvc services.ItemService) *UserHandler {
	return &UserHandler{svc: svc, itemSvc: itemSvc}
}

func (h *UserHandler) SetupRoutes(app *fiber.App) {
	users := app.Group("/api/users")

	users.Get("/:userID", h.GetPublicUser)
	users.Get("/:userID/items", h.GetUserItems)
}

// GetPublicUser returns the public seller card: no email.
func (h *UserHandler) GetPublicUser(ctx *fiber.Ctx) error {
	userID, err := strconv.ParseUint(ctx.Params("userID"), 10, 64)
	if err != nil || userID == 0 {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.svc.GetPublicUser(uint(userID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "User not found")
		}
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, user)
}

func (h *UserHandler) GetUserItems(ctx *fiber.Ctx) error {
	userID, err := strconv.ParseUint(ctx.Params("userID"), 10, 64)
	if err != nil || userID == 0 {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid user id")
	}

	items, err := h.itemSvc.FetchItemsBySeller(uint(userID))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, items)
}
