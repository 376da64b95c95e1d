package handlers

import (
	"errors"
	"time"

	"github.com/campus-agora/market-svc/internal/dto"
	"github.com/campus-agora/market-svc/internal/helper/utils"
	"github.com/campus-agora/market-svc/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	svc services.UserService
}

func NewAuthHandler(svc services.UserService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) SetupRoutes(app *fiber.App) {
	auth := app.Group("/api/auth")

	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Post("/verify", h.Verify)
	auth.Post("/resend-verification", h.ResendVerification)
	auth.Post("/forgot-password", h.ForgotPassword)
	auth.Post("/verify-reset-token", h.VerifyResetToken)
	auth.Post("/reset-password", h.ResetPassword)
}

func (h *AuthHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	user, err := h.svc.Register(requestBody)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "An account with this email already exists")
		}
		if errors.Is(err, services.ErrInvalidInput) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
		}
		return respondError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"name":       user.Name,
			"university": user.University,
		},
	})
}

func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.UserLogin
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "email and password are required")
	}

	result, err := h.svc.Login(requestBody)
	if err != nil {
		var needs *services.NeedsVerificationError
		if errors.As(err, &needs) {
			// 403 with identity so the client can offer a resend.
			return ctx.Status(fiber.StatusForbidden).JSON(dto.NeedsVerification{
				NeedsVerification: true,
				UserID:            needs.UserID,
				Email:             needs.Email,
				Name:              needs.Name,
			})
		}
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Invalid email or password")
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    result.Token,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	payload := fiber.Map{
		"token": result.Token,
		"user": fiber.Map{
			"id":         result.User.ID,
			"email":      result.User.Email,
			"name":       result.User.Name,
			"department": result.User.Department,
			"university": result.User.University,
		},
	}
	if result.University != nil && result.University.ID > 0 {
		payload["universitySlug"] = result.University.Slug
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, payload)
}

func (h *AuthHandler) Logout(ctx *fiber.Ctx) error {
	ctx.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "Logged out")
}

func (h *AuthHandler) Verify(ctx *fiber.Ctx) error {
	var requestBody dto.VerifyRequest
	if err := ctx.BodyParser(&requestBody); err != nil || requestBody.Token == "" {
		// Token may also arrive as a query param from the email link.
		requestBody.Token = ctx.Query("token")
	}
	if requestBody.Token == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Verification token is required")
	}

	result, err := h.svc.VerifyEmail(requestBody.Token)
	if err != nil {
		if errors.Is(err, services.ErrTokenExpired) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "Verification token has expired")
		}
		if errors.Is(err, services.ErrTokenInvalid) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "Invalid verification token")
		}
		return respondError(ctx, err)
	}

	payload := fiber.Map{"verified": true, "alreadyVerified": result.AlreadyVerified}
	if result.University != nil && result.University.ID > 0 {
		payload["universitySlug"] = result.University.Slug
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, payload)
}

func (h *AuthHandler) ResendVerification(ctx *fiber.Ctx) error {
	var requestBody dto.ResendVerificationRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.svc.ResendVerification(requestBody); err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "Verification email sent")
}

func (h *AuthHandler) ForgotPassword(ctx *fiber.Ctx) error {
	var requestBody dto.ForgotPasswordRequest
	if err := ctx.BodyParser(&requestBody); err != nil || requestBody.Email == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide a valid email")
	}

	if err := h.svc.ForgotPassword(requestBody.Email); err != nil {
		if errors.Is(err, services.ErrNotVerified) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "Account is not verified yet")
		}
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "If that account exists, a reset link has been sent")
}

func (h *AuthHandler) VerifyResetToken(ctx *fiber.Ctx) error {
	var requestBody dto.VerifyRequest
	if err := ctx.BodyParser(&requestBody); err != nil || requestBody.Token == "" {
		requestBody.Token = ctx.Query("token")
	}
	if requestBody.Token == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Reset token is required")
	}

	if err := h.svc.VerifyResetToken(requestBody.Token); err != nil {
		if errors.Is(err, services.ErrTokenExpired) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "Reset token has expired")
		}
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Invalid reset token")
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"valid": true})
}

func (h *AuthHandler) ResetPassword(ctx *fiber.Ctx) error {
	var requestBody dto.ResetPasswordRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.svc.ResetPassword(requestBody); err != nil {
		if errors.Is(err, services.ErrTokenExpired) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "Reset token has expired")
		}
		if errors.Is(err, services.ErrTokenInvalid) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "Invalid reset token")
		}
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "Password reset successfully")
}
