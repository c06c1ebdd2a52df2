package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/restaurant-oms/oms-api/models"
)

const (
	orderDateLayout = "2006-01-02"
	orderTimeLayout = "15:04"
)

// ProductRef is one requested order line. It decodes from a bare product id
// (3 or "3") or from an object {"productId": 3, "quantity": 2}. Quantity
// defaults to 1.
type ProductRef struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var aux struct {
			ProductID json.RawMessage `json:"productId"`
			Product   json.RawMessage `json:"product"`
			Quantity  *int            `json:"quantity"`
		}
		if err := json.Unmarshal(data, &aux); err != nil {
			return err
		}
		raw := aux.ProductID
		if len(raw) == 0 {
			raw = aux.Product
		}
		id, err := parseProductID(raw)
		if err != nil {
			return err
		}
		r.ProductID = id
		r.Quantity = 1
		if aux.Quantity != nil {
			r.Quantity = *aux.Quantity
		}
		return nil
	}

	id, err := parseProductID(data)
	if err != nil {
		return err
	}
	r.ProductID = id
	r.Quantity = 1
	return nil
}

func parseProductID(raw json.RawMessage) (uint, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("product id is required")
	}

	var n uint
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errors.New("product id must be a number or numeric string")
	}
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid product id %q", s)
	}
	return uint(id), nil
}

// CreateOrderInput holds the fields of a new order.
type CreateOrderInput struct {
	CustomerName    string
	DeliveryAddress string
	ContactNumber   string
	PaymentMethod   string
	Products        []ProductRef
	Notes           string
	OrderDate       string
	OrderTime       string
	Status          string // empty means Pending
}

// OrderFilter narrows ListOrders. Range bounds apply to the order date.
type OrderFilter struct {
	Status string
	Range  DateRange
}

// OrderService places orders and moves them through their lifecycle.
type OrderService struct {
	db      *gorm.DB
	catalog *CatalogService
	lg      *zap.Logger
}

// NewOrderService creates an order service.
func NewOrderService(db *gorm.DB, catalog *CatalogService, lg *zap.Logger) *OrderService {
	return &OrderService{db: db, catalog: catalog, lg: lg.Named("orders")}
}

func (in *CreateOrderInput) validate() (models.OrderStatus, error) {
	required := []struct {
		value string
		name  string
	}{
		{in.CustomerName, "customerName"},
		{in.DeliveryAddress, "deliveryAddress"},
		{in.ContactNumber, "contactNumber"},
		{in.PaymentMethod, "paymentMethod"},
		{in.OrderDate, "orderDate"},
		{in.OrderTime, "orderTime"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return "", NewValidationError("VALIDATION_ERROR", f.name+" is required")
		}
	}
	if len(in.Products) == 0 {
		return "", NewValidationError("VALIDATION_ERROR", "At least one product is required")
	}
	for _, ref := range in.Products {
		if ref.ProductID == 0 {
			return "", NewValidationError("VALIDATION_ERROR", "Product id is required")
		}
		if ref.Quantity < 1 {
			return "", NewValidationError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
	}
	if _, err := time.Parse(orderDateLayout, in.OrderDate); err != nil {
		return "", NewValidationError("INVALID_DATE", "orderDate must be formatted as YYYY-MM-DD")
	}
	if _, err := time.Parse(orderTimeLayout, in.OrderTime); err != nil {
		return "", NewValidationError("INVALID_TIME", "orderTime must be formatted as HH:MM")
	}

	if in.Status == "" {
		return models.OrderStatusPending, nil
	}
	status, err := models.ParseOrderStatus(in.Status)
	if err != nil {
		return "", NewValidationError("INVALID_STATUS", err.Error())
	}
	return status, nil
}

// CreateOrder prices the requested products, snapshots them onto the order
// lines and persists the order. An order created directly as Completed is
// fulfilled in the same database transaction.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	status, err := in.validate()
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(in.Products))
	for _, ref := range in.Products {
		ids = append(ids, ref.ProductID)
	}

	var orderID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.catalog.ProductsByID(ctx, tx, ids)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(in.Products))
		total := decimal.Zero
		for _, ref := range in.Products {
			p, ok := products[ref.ProductID]
			if !ok {
				return NewNotFoundError("PRODUCT_NOT_FOUND", "Product "+strconv.FormatUint(uint64(ref.ProductID), 10)+" not found")
			}
			item := models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.ProductName,
				Price:       p.Price,
				Ingredients: p.Ingredients,
				Quantity:    ref.Quantity,
			}
			total = total.Add(item.Subtotal())
			items = append(items, item)
		}

		order := models.Order{
			CustomerName:    strings.TrimSpace(in.CustomerName),
			DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
			ContactNumber:   strings.TrimSpace(in.ContactNumber),
			OrderDate:       in.OrderDate,
			OrderTime:       in.OrderTime,
			PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
			Items:           items,
			TotalAmount:     total,
			Notes:           in.Notes,
			Status:          status,
		}
		if err := tx.Create(&order).Error; err != nil {
			return internal(err, "Failed to create order")
		}
		orderID = order.ID

		if status == models.OrderStatusCompleted {
			now := time.Now().UTC()
			if err := s.applyFulfillment(ctx, tx, &order, now); err != nil {
				return err
			}
			return s.writeStatus(ctx, tx, &order, status, &now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("Order created",
		zap.Uint("order_id", orderID),
		zap.String("status", string(status)),
		zap.Int("lines", len(in.Products)),
	)
	return s.GetOrder(ctx, orderID)
}

// GetOrder returns an order with its lines.
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.load(ctx, s.db, id)
}

// ListOrders returns orders newest first.
func (s *OrderService) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC").Order("id DESC")

	if filter.Status != "" {
		status, err := models.ParseOrderStatus(filter.Status)
		if err != nil {
			return nil, NewValidationError("INVALID_STATUS", err.Error())
		}
		q = q.Where("status = ?", status)
	}
	if filter.Range.Start != nil {
		q = q.Where("order_date >= ?", filter.Range.Start.Format(orderDateLayout))
	}
	if filter.Range.End != nil {
		q = q.Where("order_date <= ?", filter.Range.End.Format(orderDateLayout))
	}

	orders := []models.Order{}
	if err := q.Find(&orders).Error; err != nil {
		return nil, internal(err, "Failed to list orders")
	}
	return orders, nil
}

// DeleteOrder soft-deletes an order. A fulfilled order must be cancelled
// first so its transaction, sale and stock effects are reversed.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	order, err := s.load(ctx, s.db, id)
	if err != nil {
		return err
	}
	if order.IsFulfilled() {
		return NewConflictError("ORDER_FULFILLED", "Cancel the order before deleting it")
	}

	res := s.db.WithContext(ctx).Where("version = ?", order.Version).Delete(&models.Order{}, id)
	if res.Error != nil {
		return internal(res.Error, "Failed to delete order")
	}
	if res.RowsAffected == 0 {
		return orderModified()
	}

	s.lg.Info("Order deleted", zap.Uint("order_id", id))
	return nil
}

func (s *OrderService) load(ctx context.Context, db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("ORDER_NOT_FOUND", "Order not found")
		}
		return nil, internal(err, "Failed to load order")
	}
	return &order, nil
}
