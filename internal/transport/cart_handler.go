package transport

import (
	"errors"
	"net/http"

	"savra-store/internal/cart"
	"savra-store/internal/domain"
	"savra-store/internal/middleware"
	"savra-store/internal/repository"
	"savra-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	OrderType string `json:"order_type"`
}

// UpdateItemRequest represents the quantity update payload
type UpdateItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// RemoveItemRequest represents the line removal payload
type RemoveItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Size      string `json:"size"`
}

// ApplyPromoRequest represents the promo application payload
type ApplyPromoRequest struct {
	Code string `json:"code" validate:"required"`
}

// CartHandler handles HTTP requests for the session cart and checkout
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes; every route requires auth
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items", h.UpdateItem)
		r.Delete("/items", h.RemoveItem)
		r.Post("/promo", h.ApplyPromo)
		r.Delete("/promo", h.RemovePromo)
		r.Post("/checkout", h.Checkout)
	})
}

// GetCart returns the priced cart for the current user
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := h.cartService.Get(r.Context(), actor.ID)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// AddItem adds a product to the cart, merging with an existing line for
// the same product and size
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	orderType := domain.OrderTypeCatalog
	if req.OrderType == string(domain.OrderTypeConstructor) {
		orderType = domain.OrderTypeConstructor
	}

	view, err := h.cartService.AddItem(r.Context(), actor.ID, productID, req.Quantity, req.Size, orderType)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrProductGone):
			middleware.RespondWithError(w, http.StatusGone, "product is no longer available")
		case errors.Is(err, cart.ErrInvalidQuantity),
			errors.Is(err, cart.ErrSizeRequired),
			errors.Is(err, cart.ErrUnknownSize):
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error("Failed to add cart item", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// UpdateItem sets a line's quantity; zero or less removes the line
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	view, err := h.cartService.UpdateQuantity(r.Context(), actor.ID, productID, req.Size, req.Quantity)
	if err != nil {
		h.logger.Error("Failed to update cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// RemoveItem drops a line from the cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req RemoveItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	view, err := h.cartService.RemoveItem(r.Context(), actor.ID, productID, req.Size)
	if err != nil {
		h.logger.Error("Failed to remove cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.cartService.Clear(r.Context(), actor.ID); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

// ApplyPromo applies a promo code to the cart. The discount amount is
// frozen from the current subtotal; usage counters move at checkout.
func (h *CartHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ApplyPromoRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.cartService.ApplyPromo(r.Context(), actor.ID, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrPromoNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "promo code not found or inactive")
			return
		}
		h.logger.Error("Failed to apply promo code", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to apply promo code")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// RemovePromo clears the applied discount
func (h *CartHandler) RemovePromo(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := h.cartService.RemovePromo(r.Context(), actor.ID)
	if err != nil {
		h.logger.Error("Failed to remove promo code", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove promo code")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// Checkout submits the cart as a pending order
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	order, err := h.cartService.Checkout(r.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, "cart is empty")
			return
		}
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to submit order")
		return
	}

	h.logger.Info("Order submitted",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", actor.ID.String()),
		zap.Int64("total", order.Total),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}
