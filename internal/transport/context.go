package transport

import (
	"context"

	"savra-store/internal/domain"
	"savra-store/internal/middleware"

	"github.com/google/uuid"
)

// actorFromContext rebuilds the authenticated user from the claims the
// auth middleware stored on the request context. The result carries only
// the identity and role; handlers that need the full profile load it
// through the user service.
func actorFromContext(ctx context.Context) (*domain.User, bool) {
	idStr, ok := middleware.GetUserID(ctx)
	if !ok {
		return nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, false
	}
	role, _ := middleware.GetUserRole(ctx)
	return &domain.User{ID: id, Role: role}, true
}
