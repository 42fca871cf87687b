package waitlist

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lingoletics/core/internal/pkg/response"
	"go.uber.org/zap"
)

// SubscribeDTO is the public signup payload.
type SubscribeDTO struct {
	Email  string `json:"email"  binding:"required,email"`
	Name   string `json:"name"   binding:"required,min=2"`
	School string `json:"school" binding:"omitempty,min=2"`
}

const checkInboxMessage = "Please check your email to confirm your subscription."

type Handler struct {
	svc    *Service
	webURL string
	log    *zap.Logger
}

func NewHandler(svc *Service, webURL string, log *zap.Logger) *Handler {
	return &Handler{svc: svc, webURL: webURL, log: log}
}

// RegisterRoutes mounts the public endpoints. The confirm route lives at the
// root so mailed links stay short; rlMW is the optional rate limiter.
func (h *Handler) RegisterRoutes(root, api *gin.RouterGroup, rlMW gin.HandlerFunc) {
	if rlMW != nil {
		api.POST("/subscribe", rlMW, h.subscribe)
	} else {
		api.POST("/subscribe", h.subscribe)
	}
	root.GET("/confirm", h.confirm)
}

func (h *Handler) subscribe(c *gin.Context) {
	var dto SubscribeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, validationMessage(err))
		return
	}
	dto.Email = strings.TrimSpace(dto.Email)
	dto.Name = strings.TrimSpace(dto.Name)
	dto.School = strings.TrimSpace(dto.School)

	created, err := h.svc.Subscribe(dto.Email, dto.Name, dto.School)
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadySubscribed):
		response.BadRequest(c, "This email is already subscribed and confirmed.")
		return
	case errors.Is(err, ErrDuplicateEmail):
		// Lost a create race against an identical concurrent signup.
		response.BadRequest(c, "This email is already subscribed.")
		return
	case errors.Is(err, ErrEmailDelivery):
		response.InternalError(c, "Failed to send confirmation email. Please try again.")
		return
	default:
		h.log.Error("subscribe failed", zap.String("email", dto.Email), zap.Error(err))
		response.InternalError(c, "Failed to subscribe. Please try again.")
		return
	}

	if created {
		response.Created(c, gin.H{"message": checkInboxMessage})
		return
	}
	response.Message(c, checkInboxMessage)
}

func (h *Handler) confirm(c *gin.Context) {
	outcome, err := h.svc.Confirm(c.Query("token"))
	switch {
	case err == nil:
		if outcome == OutcomeAlreadyConfirmed {
			h.redirect(c, "message", "already_confirmed")
			return
		}
		h.redirect(c, "message", "subscription_confirmed")
	case errors.Is(err, ErrMissingToken):
		h.redirect(c, "error", "missing_token")
	case errors.Is(err, ErrInvalidToken):
		h.redirect(c, "error", "invalid_token")
	default:
		h.log.Error("confirm failed", zap.Error(err))
		h.redirect(c, "error", "confirmation_failed")
	}
}

func (h *Handler) redirect(c *gin.Context, key, value string) {
	c.Redirect(http.StatusFound, h.webURL+"/?"+key+"="+value)
}

// validationMessage converts a binding failure into a single field-level
// message, mirroring the signup form's own errors.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Email":
			return "Please enter a valid email address"
		case "Name":
			return "Name must be at least 2 characters"
		case "School":
			return "School must be at least 2 characters"
		}
	}
	return "Invalid input. Please check your name and email."
}
