package handlers

import (
	"errors"
	"log"

	"github.com/campus-agora/market-svc/internal/helper/utils"
	"github.com/campus-agora/market-svc/internal/services"
	"github.com/gofiber/fiber/v2"
)

// statusForError maps service sentinels to HTTP statuses. Anything
// unrecognized is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrNonInstitutional),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrNotVerified):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrTokenInvalid), errors.Is(err, services.ErrTokenExpired):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the error envelope for a service failure. Unrecognized
// errors are logged server-side and the client only sees a generic message.
func respondError(ctx *fiber.Ctx, err error) error {
	status := statusForError(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("%s %s error: %v", ctx.Method(), ctx.Path(), err)
		return utils.ResponseError(ctx, status, "Internal server error")
	}
	return utils.ResponseError(ctx, status, err.Error())
}
