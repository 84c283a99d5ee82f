package repository

import (
	"context"
	"testing"

	"savra-store/internal/domain"

	"github.com/google/uuid"
)

func TestCartSaveGetRoundTrip(t *testing.T) {
	repo := NewCartRepository(testDB)
	ctx := context.Background()
	defer testDB.Exec("DELETE FROM cart_items")
	defer testDB.Exec("DELETE FROM carts")

	userID := uuid.New()
	ringID := uuid.New()

	stored := &StoredCart{
		Items: []domain.CartItem{
			{ProductID: ringID, Name: "Erosion Ring", Price: 10250, Quantity: 1, Size: "18", OrderType: domain.OrderTypeCatalog},
			{ProductID: ringID, Name: "Erosion Ring", Price: 10250, Quantity: 2, Size: "19", OrderType: domain.OrderTypeCatalog},
		},
		PromoCode:     "SAVRA10",
		PromoDiscount: 1025,
	}

	if err := repo.Save(ctx, userID, stored); err != nil {
		t.Fatalf("failed to save cart: %v", err)
	}

	got, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("failed to load cart: %v", err)
	}

	if len(got.Items) != 2 {
		t.Fatalf("expected 2 cart lines, got %d", len(got.Items))
	}
	if got.PromoCode != "SAVRA10" || got.PromoDiscount != 1025 {
		t.Errorf("promo snapshot lost: code=%q discount=%d", got.PromoCode, got.PromoDiscount)
	}

	// The same product in two sizes stays two lines
	sizes := map[string]int{}
	for _, item := range got.Items {
		sizes[item.Size] = item.Quantity
	}
	if sizes["18"] != 1 || sizes["19"] != 2 {
		t.Errorf("unexpected line quantities: %v", sizes)
	}
}

func TestCartSaveReplacesPreviousState(t *testing.T) {
	repo := NewCartRepository(testDB)
	ctx := context.Background()
	defer testDB.Exec("DELETE FROM cart_items")
	defer testDB.Exec("DELETE FROM carts")

	userID := uuid.New()

	first := &StoredCart{
		Items: []domain.CartItem{
			{ProductID: uuid.New(), Name: "Flow Ring", Price: 2000, Quantity: 3, Size: "17", OrderType: domain.OrderTypeCatalog},
		},
	}
	if err := repo.Save(ctx, userID, first); err != nil {
		t.Fatalf("failed to save initial cart: %v", err)
	}

	second := &StoredCart{
		Items: []domain.CartItem{
			{ProductID: uuid.New(), Name: "Tide Ring", Price: 4500, Quantity: 1, Size: "20", OrderType: domain.OrderTypeConstructor},
		},
	}
	if err := repo.Save(ctx, userID, second); err != nil {
		t.Fatalf("failed to overwrite cart: %v", err)
	}

	got, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("failed to load cart: %v", err)
	}

	if len(got.Items) != 1 {
		t.Fatalf("expected the saved state to replace the old one, got %d lines", len(got.Items))
	}
	if got.Items[0].Name != "Tide Ring" {
		t.Errorf("expected Tide Ring, got %q", got.Items[0].Name)
	}
	if got.Items[0].OrderType != domain.OrderTypeConstructor {
		t.Errorf("expected constructor line, got %q", got.Items[0].OrderType)
	}
}

func TestCartClearRemovesEverything(t *testing.T) {
	repo := NewCartRepository(testDB)
	ctx := context.Background()

	userID := uuid.New()

	stored := &StoredCart{
		Items: []domain.CartItem{
			{ProductID: uuid.New(), Name: "Flow Ring", Price: 2000, Quantity: 1, Size: "17", OrderType: domain.OrderTypeCatalog},
		},
		PromoCode:     "SAVRA10",
		PromoDiscount: 200,
	}
	if err := repo.Save(ctx, userID, stored); err != nil {
		t.Fatalf("failed to save cart: %v", err)
	}

	if err := repo.Clear(ctx, userID); err != nil {
		t.Fatalf("failed to clear cart: %v", err)
	}

	got, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("failed to load cleared cart: %v", err)
	}
	if len(got.Items) != 0 || got.PromoCode != "" {
		t.Errorf("expected empty cart after clear, got %d lines promo=%q", len(got.Items), got.PromoCode)
	}
}
