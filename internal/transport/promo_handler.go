package transport

import (
	"errors"
	"net/http"

	"savra-store/internal/middleware"
	"savra-store/internal/repository"
	"savra-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreatePromoRequest represents the admin promo creation payload
type CreatePromoRequest struct {
	Code     string `json:"code" validate:"required"`
	Discount int    `json:"discount" validate:"required,min=1,max=100"`
	IsActive bool   `json:"is_active"`
	MaxUsage *int   `json:"max_usage"`
}

// ValidatePromoRequest represents the promo validation payload
type ValidatePromoRequest struct {
	Code string `json:"code" validate:"required"`
}

// ValidatePromoResponse reports a code's redeemability and discount
type ValidatePromoResponse struct {
	Code     string `json:"code"`
	Discount int    `json:"discount"`
	Valid    bool   `json:"valid"`
}

// PromoHandler handles HTTP requests for promo codes
type PromoHandler struct {
	promoService service.PromoService
	logger       *zap.Logger
}

// NewPromoHandler creates a new PromoHandler
func NewPromoHandler(promoService service.PromoService, logger *zap.Logger) *PromoHandler {
	return &PromoHandler{
		promoService: promoService,
		logger:       logger,
	}
}

// RegisterRoutes registers promo routes; management requires an admin
func (h *PromoHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/promo-codes", func(r chi.Router) {
		// validation is public so the storefront can check a code
		// before the shopper signs in
		r.Post("/validate", h.Validate)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Validate checks whether a code can currently be redeemed. It never
// touches usage counters.
func (h *PromoHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidatePromoRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	promo, err := h.promoService.Validate(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, service.ErrPromoNotFound) {
			middleware.RespondWithJSON(w, http.StatusOK, ValidatePromoResponse{Code: req.Code, Valid: false})
			return
		}
		h.logger.Error("Failed to validate promo code", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to validate promo code")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ValidatePromoResponse{
		Code:     promo.Code,
		Discount: promo.Discount,
		Valid:    true,
	})
}

// List returns every promo code with its usage counters (admin only)
func (h *PromoHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	promos, err := h.promoService.List(r.Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		h.logger.Error("Failed to list promo codes", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list promo codes")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, promos)
}

// Create registers a new promo code (admin only)
func (h *PromoHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreatePromoRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	promo, err := h.promoService.Create(r.Context(), actor, req.Code, req.Discount, req.IsActive, req.MaxUsage)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		case errors.Is(err, service.ErrInvalidDiscount):
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, "discount must be between 1 and 100")
		case errors.Is(err, repository.ErrPromoCodeAlreadyExists):
			middleware.RespondWithError(w, http.StatusConflict, "promo code already exists")
		default:
			h.logger.Error("Failed to create promo code", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create promo code")
		}
		return
	}

	h.logger.Info("Promo code created", zap.String("code", promo.Code))
	middleware.RespondWithJSON(w, http.StatusCreated, promo)
}

// Delete removes a promo code (admin only)
func (h *PromoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid promo code ID")
		return
	}

	if err := h.promoService.Delete(r.Context(), actor, id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized):
			middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		case errors.Is(err, repository.ErrPromoCodeNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "promo code not found")
		default:
			h.logger.Error("Failed to delete promo code", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete promo code")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "promo code deleted"})
}
