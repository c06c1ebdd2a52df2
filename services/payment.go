package services

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/restaurant-oms/oms-api/models"
)

// SetTransactionStatus records a payment outcome on a transaction and
// mirrors it onto its order: Failed marks the order Payment Failed, Refunded
// marks it Refunded and Completed marks it Completed. These are status
// writes only; the sale and stock effects stay applied until the order is
// cancelled or the transaction is deleted.
func (s *OrderService) SetTransactionStatus(ctx context.Context, id uint, raw string) (*models.Transaction, error) {
	status, err := models.ParseTransactionStatus(raw)
	if err != nil {
		return nil, NewValidationError("INVALID_STATUS", err.Error())
	}

	var result models.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn, err := findTransaction(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := tx.WithContext(ctx).Model(txn).Update("status", status).Error; err != nil {
			return internal(err, "Failed to update transaction status")
		}

		if orderStatus, ok := models.OrderStatusForPayment(status); ok {
			order, err := s.load(ctx, tx, txn.OrderID)
			switch {
			case IsKind(err, KindNotFound):
				s.lg.Warn("Transaction has no live order", zap.Uint("transaction_id", id), zap.Uint("order_id", txn.OrderID))
			case err != nil:
				return err
			case order.Status != orderStatus:
				if err := s.writeStatus(ctx, tx, order, orderStatus, order.FulfilledAt); err != nil {
					return err
				}
			}
		}

		if err := tx.WithContext(ctx).Preload("Order").First(&result, id).Error; err != nil {
			return internal(err, "Failed to load transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("Transaction status changed",
		zap.Uint("transaction_id", id),
		zap.Uint("order_id", result.OrderID),
		zap.String("status", string(status)),
	)
	return &result, nil
}

// DeleteTransaction removes a transaction together with its sale, returns
// the order's quantities to stock and marks the order Transaction Deleted.
func (s *OrderService) DeleteTransaction(ctx context.Context, id uint) error {
	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn, err := findTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		orderID = txn.OrderID

		order, err := s.load(ctx, tx, txn.OrderID)
		switch {
		case IsKind(err, KindNotFound):
			return deleteLedgerRecords(ctx, tx, txn.OrderID)
		case err != nil:
			return err
		}

		if order.IsFulfilled() {
			err = s.reverseFulfillment(ctx, tx, order)
		} else {
			err = deleteLedgerRecords(ctx, tx, order.ID)
		}
		if err != nil {
			return err
		}
		return s.writeStatus(ctx, tx, order, models.OrderStatusTransactionDeleted, nil)
	})
	if err != nil {
		return err
	}

	s.lg.Info("Transaction deleted", zap.Uint("transaction_id", id), zap.Uint("order_id", orderID))
	return nil
}

func findTransaction(ctx context.Context, db *gorm.DB, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := db.WithContext(ctx).First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("TRANSACTION_NOT_FOUND", "Transaction not found")
		}
		return nil, internal(err, "Failed to load transaction")
	}
	return &txn, nil
}
