package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"savra-store/internal/domain"
	"savra-store/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatusChange = errors.New("order status transition is not allowed")
	ErrUnknownStatus       = errors.New("unknown order status")
)

// RecentOrdersLimit bounds the dashboard's recent orders list
const RecentOrdersLimit = 10

// OrderService serves order history, the admin status workflow, the CRM
// CSV export and the dashboard stats.
type OrderService interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	Get(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Order, error)
	ListAll(ctx context.Context, actor *domain.User) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, actor *domain.User, id uuid.UUID, status domain.OrderStatus) error
	ExportCSV(ctx context.Context, actor *domain.User, w io.Writer) error
	Stats(ctx context.Context, actor *domain.User) (*domain.AdminStats, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// ListByUser returns the user's own order history
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// Get returns one order; customers may only see their own
func (s *orderService) Get(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.UserID != actor.ID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

// ListAll returns every order (admin only)
func (s *orderService) ListAll(ctx context.Context, actor *domain.User) ([]*domain.Order, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return s.orderRepo.List(ctx, 0)
}

// UpdateStatus moves an order along the fulfillment progression (admin
// only). Delivered and cancelled orders never change again.
func (s *orderService) UpdateStatus(ctx context.Context, actor *domain.User, id uuid.UUID, status domain.OrderStatus) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrNotAuthorized
	}
	if !domain.ValidOrderStatus(status) {
		return ErrUnknownStatus
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanTransition(order.Status, status) {
		return ErrInvalidStatusChange
	}

	return s.orderRepo.UpdateStatus(ctx, id, status)
}

// ExportCSV streams all orders as CSV for the CRM (admin only)
func (s *orderService) ExportCSV(ctx context.Context, actor *domain.User, w io.Writer) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrNotAuthorized
	}

	orders, err := s.orderRepo.List(ctx, 0)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{"order_id", "user_id", "created_at", "status", "order_type", "items", "subtotal", "discount", "delivery", "total", "promo_code"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, order := range orders {
		record := []string{
			order.ID.String(),
			order.UserID.String(),
			order.CreatedAt.Format(time.RFC3339),
			string(order.Status),
			string(order.OrderType),
			itemsColumn(order.Items),
			strconv.FormatInt(order.Subtotal, 10),
			strconv.FormatInt(order.Discount, 10),
			strconv.FormatInt(order.Delivery, 10),
			strconv.FormatInt(order.Total, 10),
			order.PromoCode,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Stats aggregates the back-office dashboard numbers (admin only)
func (s *orderService) Stats(ctx context.Context, actor *domain.User) (*domain.AdminStats, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	totalOrders, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orderRepo.Revenue(ctx)
	if err != nil {
		return nil, err
	}
	totalProducts, err := s.productRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.orderRepo.List(ctx, RecentOrdersLimit)
	if err != nil {
		return nil, err
	}

	stats := &domain.AdminStats{
		TotalOrders:   totalOrders,
		TotalRevenue:  revenue,
		TotalProducts: totalProducts,
		TotalUsers:    totalUsers,
	}
	for _, order := range recent {
		stats.RecentOrders = append(stats.RecentOrders, *order)
	}

	return stats, nil
}

func itemsColumn(items []domain.CartItem) string {
	var out string
	for i, item := range items {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s x%d", item.Name, item.Quantity)
		if item.Size != "" {
			out += fmt.Sprintf(" (size %s)", item.Size)
		}
	}
	return out
}
