package mailer

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/campus-agora/market-svc/internal/dto"
)

// Handler routes broker messages to the mailer by event key.
type Handler struct {
	mailer *Mailer
}

func NewHandler(m *Mailer) *Handler {
	return &Handler{mailer: m}
}

func (h *Handler) HandleMessage(key, value string) error {
	switch key {
	case dto.EventVerifyEmail:
		var event dto.VerifyEmailEvent
		if err := json.Unmarshal([]byte(value), &event); err != nil {
			log.Printf("invalid verify email payload: %s", value)
			return err
		}
		log.Printf("verify email event received: user_id=%d email=%s", event.UserID, event.Email)
		return h.mailer.SendVerifyEmail(event.Email, event.Name, event.Token)

	case dto.EventResetPassword:
		var event dto.ResetPasswordEvent
		if err := json.Unmarshal([]byte(value), &event); err != nil {
			log.Printf("invalid reset password payload: %s", value)
			return err
		}
		log.Printf("reset password event received: user_id=%d email=%s", event.UserID, event.Email)
		return h.mailer.SendResetEmail(event.Email, event.Name, event.Token)

	default:
		return fmt.Errorf("unknown event key %q", key)
	}
}
