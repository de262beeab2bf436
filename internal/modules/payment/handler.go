package payment

import (
	"errors"
	"net/http"

	"equiherds/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/tokenize", h.Tokenize)
}

func (h *Handler) Tokenize(c *gin.Context) {
	var card CardDetails
	if err := c.ShouldBindJSON(&card); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid card payload")
		return
	}

	payer := PayerIdentity{UserID: c.GetInt64("user_id")}
	res, err := h.service.Tokenize(c.Request.Context(), payer, card)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCard):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Card details are incomplete or invalid")
		case errors.Is(err, ErrAuthorization):
			response.Error(c, http.StatusPaymentRequired, "PAYMENT_AUTHORIZATION_FAILED", "Payment method could not be authorized")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to tokenize payment method")
		}
		return
	}

	response.Success(c, http.StatusOK, res)
}
