package dto

type RegisterRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Department string `json:"department,omitempty"`
	University string `json:"university,omitempty"`
}

type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the decoded JWT claim set kept in fiber locals.
type AuthResponse struct {
	UserID int     `json:"user_id"`
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Expiry float64 `json:"exp"`
	Iat    float64 `json:"iat"`
}

type VerifyRequest struct {
	Token string `json:"token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type ResendVerificationRequest struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// NeedsVerification carries enough identity for the client to trigger a
// resend without another query.
type NeedsVerification struct {
	NeedsVerification bool   `json:"needsVerification"`
	UserID            uint   `json:"userId"`
	Email             string `json:"email"`
	Name              string `json:"name"`
}
