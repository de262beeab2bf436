package subscription

import (
	"errors"
	"net/http"

	"equiherds/internal/domain"
	"equiherds/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/plans", h.GetPlans)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/subscriptions", h.GetMySubscription)
	rg.POST("/subscriptions", h.Subscribe)
	rg.DELETE("/subscriptions", h.Cancel)
	rg.GET("/subscriptions/usage", h.GetUsage)
}

func (h *Handler) GetPlans(c *gin.Context) {
	plans, err := h.service.GetPlans(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load plans")
		return
	}
	response.Success(c, http.StatusOK, plans)
}

func (h *Handler) GetMySubscription(c *gin.Context) {
	sub, plan, err := h.service.GetCurrentSubscription(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load subscription")
		return
	}
	response.Success(c, http.StatusOK, buildSubscriptionResponse(sub, plan))
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sellerID := c.GetInt64("user_id")
	role := domain.UserRole(c.GetString("role"))

	sub, plan, err := h.service.Subscribe(c.Request.Context(), sellerID, role, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotSeller):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
		case errors.Is(err, ErrPlanNotFound):
			response.Error(c, http.StatusNotFound, "PLAN_NOT_FOUND", err.Error())
		case errors.Is(err, ErrAlreadySubscribed):
			response.Error(c, http.StatusConflict, "ALREADY_SUBSCRIBED", err.Error())
		case errors.Is(err, ErrInvalidBillingPeriod):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to subscribe")
		}
		return
	}

	response.Success(c, http.StatusCreated, buildSubscriptionResponse(sub, plan))
}

func (h *Handler) Cancel(c *gin.Context) {
	var req CancelRequest
	_ = c.ShouldBindJSON(&req) // reason is optional

	if err := h.service.Cancel(c.Request.Context(), c.GetInt64("user_id"), req.Reason); err != nil {
		switch {
		case errors.Is(err, ErrSubscriptionNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrCannotCancelFree):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to cancel subscription")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "subscription cancelled"})
}

func (h *Handler) GetUsage(c *gin.Context) {
	usage, err := h.service.GetUsage(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load usage")
		return
	}
	response.Success(c, http.StatusOK, usage)
}
