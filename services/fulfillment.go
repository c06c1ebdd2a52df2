package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/restaurant-oms/oms-api/models"
)

// SetOrderStatus moves an order to a new status.
//
// Entering Completed for the first time records one transaction and one sale
// and moves each line's quantity from stock to sold. Cancelling a fulfilled
// order from any status deletes those records and restores the counters.
// Every other change is a plain status write. The whole transition runs in
// one database transaction and the status write is conditional on the order
// version read at the start, so two concurrent transitions of the same order
// cannot both apply their side effects.
func (s *OrderService) SetOrderStatus(ctx context.Context, id uint, raw string) (*models.Order, error) {
	status, err := models.ParseOrderStatus(raw)
	if err != nil {
		return nil, NewValidationError("INVALID_STATUS", err.Error())
	}

	var result *models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}

		current := order.Status
		if current == models.OrderStatusCompleted && status == models.OrderStatusCompleted {
			result = order
			return nil
		}

		fulfilledAt := order.FulfilledAt
		switch {
		case status == models.OrderStatusCompleted && !order.IsFulfilled():
			now := time.Now().UTC()
			if err := s.applyFulfillment(ctx, tx, order, now); err != nil {
				return err
			}
			fulfilledAt = &now
		case status == models.OrderStatusCancelled && order.IsFulfilled():
			if err := s.reverseFulfillment(ctx, tx, order); err != nil {
				return err
			}
			fulfilledAt = nil
		}

		if err := s.writeStatus(ctx, tx, order, status, fulfilledAt); err != nil {
			return err
		}

		result, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("Order status changed",
		zap.Uint("order_id", id),
		zap.String("status", string(status)),
		zap.Bool("fulfilled", result.IsFulfilled()),
	)
	return result, nil
}

// writeStatus persists the status and fulfillment marker, failing with a
// conflict when the order changed since it was read.
func (s *OrderService) writeStatus(ctx context.Context, tx *gorm.DB, order *models.Order, status models.OrderStatus, fulfilledAt *time.Time) error {
	res := tx.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]any{
			"status":       status,
			"fulfilled_at": fulfilledAt,
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return internal(res.Error, "Failed to update order status")
	}
	if res.RowsAffected == 0 {
		return orderModified()
	}

	order.Status = status
	order.FulfilledAt = fulfilledAt
	order.Version++
	return nil
}

// applyFulfillment creates the order's transaction and sale unless they
// already exist, then moves each line's quantity from stock to sold.
func (s *OrderService) applyFulfillment(ctx context.Context, tx *gorm.DB, order *models.Order, now time.Time) error {
	db := tx.WithContext(ctx)

	var txn models.Transaction
	err := db.Where("order_id = ?", order.ID).First(&txn).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		txn = models.Transaction{
			Reference:     uuid.NewString(),
			OrderID:       order.ID,
			Amount:        order.TotalAmount,
			PaymentMethod: order.PaymentMethod,
			PaymentDetails: map[string]any{
				"customerName":  order.CustomerName,
				"contactNumber": order.ContactNumber,
			},
			Notes:           order.Notes,
			Status:          models.TransactionStatusCompleted,
			TransactionDate: now,
		}
		if err := db.Create(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return orderModified()
			}
			return internal(err, "Failed to record transaction")
		}
	case err != nil:
		return internal(err, "Failed to look up transaction")
	}

	var sale models.Sale
	err = db.Where("order_id = ?", order.ID).First(&sale).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sale = models.Sale{
			OrderID:       order.ID,
			TransactionID: txn.ID,
			TotalAmount:   order.TotalAmount,
			Customer: models.CustomerDetails{
				Name:          order.CustomerName,
				Address:       order.DeliveryAddress,
				ContactNumber: order.ContactNumber,
			},
			SaleDate:      now,
			PaymentMethod: order.PaymentMethod,
			PaymentStatus: "Paid",
			SalesPerson:   models.DefaultSalesPerson,
		}
		for _, item := range order.Items {
			sale.Items = append(sale.Items, models.SaleItem{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   item.Price,
				Subtotal:    item.Subtotal(),
			})
		}
		if err := db.Create(&sale).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return orderModified()
			}
			return internal(err, "Failed to record sale")
		}
	case err != nil:
		return internal(err, "Failed to look up sale")
	}

	for _, item := range order.Items {
		if err := s.adjustLine(ctx, tx, order.ID, item, -item.Quantity, item.Quantity); err != nil {
			return err
		}
	}

	s.lg.Info("Order fulfilled",
		zap.Uint("order_id", order.ID),
		zap.Uint("transaction_id", txn.ID),
		zap.Uint("sale_id", sale.ID),
	)
	return nil
}

// reverseFulfillment removes the order's transaction and sale and returns
// each line's quantity from sold to stock. Records that are already gone are
// treated as reconciled.
func (s *OrderService) reverseFulfillment(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if err := deleteLedgerRecords(ctx, tx, order.ID); err != nil {
		return err
	}

	for _, item := range order.Items {
		if err := s.adjustLine(ctx, tx, order.ID, item, item.Quantity, -item.Quantity); err != nil {
			return err
		}
	}

	s.lg.Info("Order fulfillment reversed", zap.Uint("order_id", order.ID))
	return nil
}

// deleteLedgerRecords hard-deletes the sale, sale lines and transaction
// recorded for an order.
func deleteLedgerRecords(ctx context.Context, tx *gorm.DB, orderID uint) error {
	db := tx.WithContext(ctx)

	var sales []models.Sale
	if err := db.Where("order_id = ?", orderID).Find(&sales).Error; err != nil {
		return internal(err, "Failed to look up sale")
	}
	for _, sale := range sales {
		if err := db.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return internal(err, "Failed to delete sale items")
		}
		if err := db.Delete(&models.Sale{}, sale.ID).Error; err != nil {
			return internal(err, "Failed to delete sale")
		}
	}

	if err := db.Where("order_id = ?", orderID).Delete(&models.Transaction{}).Error; err != nil {
		return internal(err, "Failed to delete transaction")
	}
	return nil
}

func (s *OrderService) adjustLine(ctx context.Context, tx *gorm.DB, orderID uint, item models.OrderItem, stockDelta, soldDelta int) error {
	_, err := s.catalog.AdjustInventory(ctx, tx, item.ProductID, stockDelta, soldDelta)
	if IsKind(err, KindNotFound) {
		s.lg.Warn("Skipping inventory adjustment for deleted product",
			zap.Uint("order_id", orderID),
			zap.Uint("product_id", item.ProductID),
		)
		return nil
	}
	return err
}

func orderModified() error {
	return NewConflictError("ORDER_MODIFIED", "Order was modified concurrently, please retry")
}
