package transport

import (
	"net/http"

	"savra-store/internal/middleware"
	"savra-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ToggleFavoriteResponse reports the new membership state
type ToggleFavoriteResponse struct {
	ProductID string `json:"product_id"`
	Favorite  bool   `json:"favorite"`
}

// FavoriteHandler handles HTTP requests for the favorites list
type FavoriteHandler struct {
	favoriteService service.FavoriteService
	logger          *zap.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favoriteService service.FavoriteService, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		logger:          logger,
	}
}

// RegisterRoutes registers favorites routes; every route requires auth
func (h *FavoriteHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/favorites", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Delete("/", h.Clear)
		r.Post("/{productID}/toggle", h.Toggle)
		r.Put("/{productID}", h.Add)
		r.Delete("/{productID}", h.Remove)
	})
}

// List returns the user's favorite products
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	products, err := h.favoriteService.List(r.Context(), actor.ID)
	if err != nil {
		h.logger.Error("Failed to list favorites", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Toggle flips a product's favorite state and reports the new one
func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	favorite, err := h.favoriteService.Toggle(r.Context(), actor.ID, productID)
	if err != nil {
		h.logger.Error("Failed to toggle favorite", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to toggle favorite")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ToggleFavoriteResponse{
		ProductID: productID.String(),
		Favorite:  favorite,
	})
}

// Add marks a product as a favorite; adding twice is a no-op
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.favoriteService.Add(r.Context(), actor.ID, productID); err != nil {
		h.logger.Error("Failed to add favorite", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add favorite")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ToggleFavoriteResponse{
		ProductID: productID.String(),
		Favorite:  true,
	})
}

// Remove drops a product from the favorites list
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.favoriteService.Remove(r.Context(), actor.ID, productID); err != nil {
		h.logger.Error("Failed to remove favorite", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove favorite")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ToggleFavoriteResponse{
		ProductID: productID.String(),
		Favorite:  false,
	})
}

// Clear removes every favorite for the user
func (h *FavoriteHandler) Clear(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.favoriteService.Clear(r.Context(), actor.ID); err != nil {
		h.logger.Error("Failed to clear favorites", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear favorites")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "favorites cleared"})
}
