package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"equiherds/internal/domain"
	"equiherds/internal/modules/quota"
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
	rg.GET("/listings/:id", h.GetListing)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/listings", h.CreateListing)
}

func (h *Handler) GetListing(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid listing ID")
		return
	}

	l, err := h.service.GetListing(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Listing not found")
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusUnprocessableEntity, "MALFORMED_LISTING", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load listing")
		}
		return
	}

	response.Success(c, http.StatusOK, l)
}

func (h *Handler) CreateListing(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	userID := c.GetInt64("user_id")
	role := domain.UserRole(c.GetString("role"))

	l, err := h.service.CreateListing(c.Request.Context(), userID, role, req)
	if err != nil {
		var limitErr *quota.LimitError
		switch {
		case errors.As(err, &limitErr) && errors.Is(err, quota.ErrNoActivePlan):
			response.Error(c, http.StatusPaymentRequired, "NO_ACTIVE_PLAN", "No active plan")
		case errors.As(err, &limitErr):
			response.ErrorWithDetails(c, http.StatusForbidden, "QUOTA_EXCEEDED", limitErr.Error(), gin.H{
				"category": limitErr.Category,
				"current":  limitErr.Current,
				"limit":    limitErr.Limit,
				"plan":     limitErr.Plan,
			})
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only sellers can create listings")
		case errors.Is(err, ErrValidation), errors.Is(err, quota.ErrUnknownCategory):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create listing")
		}
		return
	}

	response.Success(c, http.StatusCreated, l)
}
