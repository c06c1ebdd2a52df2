package services_test

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/restaurant-oms/oms-api/models"
	"github.com/restaurant-oms/oms-api/services"
)

func TestSetOrderStatus_CompleteThenCancel(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Product A", "100", 10)

	order := f.order(t, "", ref(a.ID, 1))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 10, f.reload(t, a.ID).StockQuantity)

	completed, err := f.orders.SetOrderStatus(f.ctx, order.ID, "Completed")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, completed.Status)
	assert.True(t, completed.IsFulfilled())
	require.Len(t, completed.Items, 1)
	assert.Equal(t, "Product A", completed.Items[0].ProductName)

	p := f.reload(t, a.ID)
	assert.Equal(t, 9, p.StockQuantity)
	assert.Equal(t, 1, p.SoldQuantity)

	var txn models.Transaction
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&txn).Error)
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "Cash", txn.PaymentMethod)
	assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
	assert.NotEmpty(t, txn.Reference)

	var sale models.Sale
	require.NoError(t, f.db.Preload("Items").Where("order_id = ?", order.ID).First(&sale).Error)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, txn.ID, sale.TransactionID)
	assert.Equal(t, models.DefaultSalesPerson, sale.SalesPerson)
	assert.Equal(t, "Ada Lovelace", sale.Customer.Name)
	require.Len(t, sale.Items, 1)
	assert.True(t, sale.Items[0].Subtotal.Equal(decimal.NewFromInt(100)))

	cancelled, err := f.orders.SetOrderStatus(f.ctx, order.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.IsFulfilled())

	p = f.reload(t, a.ID)
	assert.Equal(t, 10, p.StockQuantity)
	assert.Equal(t, 0, p.SoldQuantity)
	assert.Equal(t, int64(0), f.count(t, &models.Transaction{}, order.ID))
	assert.Equal(t, int64(0), f.count(t, &models.Sale{}, order.ID))

	var lines int64
	require.NoError(t, f.db.Model(&models.SaleItem{}).Where("sale_id = ?", sale.ID).Count(&lines).Error)
	assert.Equal(t, int64(0), lines)
}

func TestSetOrderStatus_CompletingTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Bruschetta", "8", 10)
	b := f.product(t, "Spritz", "9", 10)
	order := f.order(t, "", ref(a.ID, 2), ref(b.ID, 1))

	for i := 0; i < 3; i++ {
		_, err := f.orders.SetOrderStatus(f.ctx, order.ID, "Completed")
		require.NoError(t, err)
	}

	assert.Equal(t, 8, f.reload(t, a.ID).StockQuantity)
	assert.Equal(t, 2, f.reload(t, a.ID).SoldQuantity)
	assert.Equal(t, 9, f.reload(t, b.ID).StockQuantity)
	assert.Equal(t, int64(1), f.count(t, &models.Transaction{}, order.ID))
	assert.Equal(t, int64(1), f.count(t, &models.Sale{}, order.ID))
}

func TestSetOrderStatus_PlainTransitions(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Olives", "4", 10)
	order := f.order(t, "", ref(a.ID, 3))

	cancelled, err := f.orders.SetOrderStatus(f.ctx, order.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 10, f.reload(t, a.ID).StockQuantity)
	assert.Equal(t, int64(0), f.count(t, &models.Transaction{}, order.ID))

	failed, err := f.orders.SetOrderStatus(f.ctx, order.ID, "Payment Failed")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaymentFailed, failed.Status)
	assert.Equal(t, 10, f.reload(t, a.ID).StockQuantity)

	// A cancelled order can still be completed later
	_, err = f.orders.SetOrderStatus(f.ctx, order.ID, "Completed")
	require.NoError(t, err)
	assert.Equal(t, 7, f.reload(t, a.ID).StockQuantity)
}

func TestSetOrderStatus_RecompleteAfterCancel(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Pesto", "12", 10)
	order := f.order(t, "", ref(a.ID, 2))

	for _, status := range []string{"Completed", "Cancelled", "Completed"} {
		_, err := f.orders.SetOrderStatus(f.ctx, order.ID, status)
		require.NoError(t, err)
	}

	p := f.reload(t, a.ID)
	assert.Equal(t, 8, p.StockQuantity)
	assert.Equal(t, 2, p.SoldQuantity)
	assert.Equal(t, int64(1), f.count(t, &models.Transaction{}, order.ID))
	assert.Equal(t, int64(1), f.count(t, &models.Sale{}, order.ID))
}

func TestSetOrderStatus_LabelAfterCompletionKeepsRecords(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Cannoli", "5", 10)
	order := f.order(t, "Completed", ref(a.ID, 1))

	refunded, err := f.orders.SetOrderStatus(f.ctx, order.ID, "Refunded")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusRefunded, refunded.Status)
	assert.True(t, refunded.IsFulfilled())
	assert.Equal(t, int64(1), f.count(t, &models.Transaction{}, order.ID))

	// Back to Completed writes the status only
	again, err := f.orders.SetOrderStatus(f.ctx, order.ID, "Completed")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, again.Status)
	assert.Equal(t, 9, f.reload(t, a.ID).StockQuantity)
	assert.Equal(t, int64(1), f.count(t, &models.Transaction{}, order.ID))
}

func TestSetOrderStatus_CancelFromLabelReversesFulfillment(t *testing.T) {
	for _, label := range []string{"Refunded", "Pending", "Payment Failed", "Transaction Deleted"} {
		t.Run(label, func(t *testing.T) {
			f := newFixture(t)
			a := f.product(t, "Ossobuco", "22", 10)
			order := f.order(t, "Completed", ref(a.ID, 1))

			_, err := f.orders.SetOrderStatus(f.ctx, order.ID, label)
			require.NoError(t, err)
			assert.Equal(t, 9, f.reload(t, a.ID).StockQuantity)

			cancelled, err := f.orders.SetOrderStatus(f.ctx, order.ID, "Cancelled")
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
			assert.False(t, cancelled.IsFulfilled())

			p := f.reload(t, a.ID)
			assert.Equal(t, 10, p.StockQuantity)
			assert.Equal(t, 0, p.SoldQuantity)
			assert.Equal(t, int64(0), f.count(t, &models.Transaction{}, order.ID))
			assert.Equal(t, int64(0), f.count(t, &models.Sale{}, order.ID))

			require.NoError(t, f.orders.DeleteOrder(f.ctx, order.ID))
		})
	}
}

func TestSetOrderStatus_DuplicateTransactionIsConflict(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Tagliata", "24", 10)
	order := f.order(t, "", ref(a.ID, 2))

	// A concurrent completion records its transaction after this one
	// looked for it.
	raced := false
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:race_transaction", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "transactions" {
			return
		}
		raced = true
		rival := models.Transaction{
			Reference:       "rival-completion",
			OrderID:         order.ID,
			Amount:          order.TotalAmount,
			PaymentMethod:   order.PaymentMethod,
			Status:          models.TransactionStatusCompleted,
			TransactionDate: order.CreatedAt,
		}
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Create(&rival).Error)
	}))

	_, err := f.orders.SetOrderStatus(f.ctx, order.ID, "Completed")
	require.True(t, raced)
	var svcErr *services.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, services.KindConflict, svcErr.Kind)
	assert.Equal(t, "ORDER_MODIFIED", svcErr.Code)

	// The failed transition rolled back as a whole
	current, err := f.orders.GetOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, current.Status)
	assert.False(t, current.IsFulfilled())
	assert.Equal(t, 10, f.reload(t, a.ID).StockQuantity)
	assert.Equal(t, int64(0), f.count(t, &models.Transaction{}, order.ID))
}

func TestSetOrderStatus_Errors(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Polenta", "6", 10)
	order := f.order(t, "", ref(a.ID, 1))

	_, err := f.orders.SetOrderStatus(f.ctx, order.ID, "Shipped")
	assert.True(t, services.IsKind(err, services.KindValidation))

	_, err = f.orders.SetOrderStatus(f.ctx, 999, "Completed")
	assert.True(t, services.IsKind(err, services.KindNotFound))
}

func TestSetOrderStatus_DeletedProductIsSkipped(t *testing.T) {
	f := newFixture(t)
	kept := f.product(t, "Kept", "10", 10)
	gone := f.product(t, "Gone", "20", 10)
	order := f.order(t, "", ref(kept.ID, 1), ref(gone.ID, 1))

	require.NoError(t, f.catalog.DeleteProduct(f.ctx, gone.ID))

	completed, err := f.orders.SetOrderStatus(f.ctx, order.ID, "Completed")
	require.NoError(t, err)
	assert.True(t, completed.IsFulfilled())
	assert.Equal(t, 9, f.reload(t, kept.ID).StockQuantity)
	assert.Equal(t, 10, f.reload(t, gone.ID).StockQuantity)

	var sale models.Sale
	require.NoError(t, f.db.Preload("Items").Where("order_id = ?", order.ID).First(&sale).Error)
	assert.Len(t, sale.Items, 2)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(30)))
}

func TestSetOrderStatus_ConcurrentCompletionAppliesOnce(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Espresso", "3", 50)
	order := f.order(t, "", ref(a.ID, 5))

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orders.SetOrderStatus(f.ctx, order.ID, "Completed")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.True(t, services.IsKind(err, services.KindConflict), "unexpected error: %v", err)
		}
	}

	p := f.reload(t, a.ID)
	assert.Equal(t, 45, p.StockQuantity)
	assert.Equal(t, 5, p.SoldQuantity)
	assert.Equal(t, int64(1), f.count(t, &models.Transaction{}, order.ID))
	assert.Equal(t, int64(1), f.count(t, &models.Sale{}, order.ID))
}
