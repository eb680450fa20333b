package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swishwear/storefront/internal/catalog"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func variantRows(stock, price, cost int) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"stock", "price_satang", "cost_satang"}).
		AddRow(stock, price, cost)
}

func TestCreateManualRoundTrip(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}
	created := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))
	// variant 7 has stock 5; ordering qty 2 at 500 THB
	mock.ExpectQuery("SELECT stock, price_satang, cost_satang FROM product_variants").
		WithArgs(int64(7)).
		WillReturnRows(variantRows(5, 50000, 32000))
	mock.ExpectExec("UPDATE product_variants SET stock = stock -").
		WithArgs(int64(7), 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO orderdetails").
		WithArgs(pgxmock.AnyArg(), int64(7), 2, 50000, 32000).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE orders SET total_satang").
		WithArgs(pgxmock.AnyArg(), 100000).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	out, err := repo.CreateManual(context.Background(), 9,
		[]LineInput{{VariantID: 7, Qty: 2, UnitPriceSatang: 50000}})
	require.NoError(t, err)
	assert.Equal(t, 100000, out.TotalSatang, "total recomputed from the locked variant price")
	assert.Equal(t, created, out.CreatedAt)
	_, err = uuid.Parse(out.ID)
	assert.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateManualInsufficientStockRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	// stock 1, requested 2: the whole order aborts, nothing else runs
	mock.ExpectQuery("SELECT stock, price_satang, cost_satang FROM product_variants").
		WithArgs(int64(7)).
		WillReturnRows(variantRows(1, 50000, 32000))
	mock.ExpectRollback()

	_, err := repo.CreateManual(context.Background(), 9,
		[]LineInput{{VariantID: 7, Qty: 2}})
	var insufficient *catalog.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(7), insufficient.VariantID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateManualSecondLineFailureAbortsWholeOrder(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery("SELECT stock, price_satang, cost_satang FROM product_variants").
		WithArgs(int64(1)).
		WillReturnRows(variantRows(10, 20000, 9000))
	mock.ExpectExec("UPDATE product_variants SET stock = stock -").
		WithArgs(int64(1), 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO orderdetails").
		WithArgs(pgxmock.AnyArg(), int64(1), 1, 20000, 9000).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT stock, price_satang, cost_satang FROM product_variants").
		WithArgs(int64(2)).
		WillReturnRows(variantRows(0, 30000, 15000))
	mock.ExpectRollback()

	_, err := repo.CreateManual(context.Background(), 9, []LineInput{
		{VariantID: 1, Qty: 1},
		{VariantID: 2, Qty: 1},
	})
	var insufficient *catalog.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(2), insufficient.VariantID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateManualRejectsEmptyAndInvalid(t *testing.T) {
	repo := &Repo{DB: newMock(t)}

	_, err := repo.CreateManual(context.Background(), 9, nil)
	require.ErrorIs(t, err, ErrEmptyOrder)

	_, err = repo.CreateManual(context.Background(), 9, []LineInput{{VariantID: 7, Qty: 0}})
	require.Error(t, err)
}

func TestConfirmSlipMovesToVerifyingAndClearsCart(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}
	orderID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET slip_path").
		WithArgs(orderID, int64(9), "slips/abc.jpg").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM cartitem USING cart").
		WithArgs(orderID, int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	require.NoError(t, repo.ConfirmSlip(context.Background(), orderID, 9, "slips/abc.jpg"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmSlipNotOwnedOrNotPending(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}
	orderID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET slip_path").
		WithArgs(orderID, int64(5), "slips/abc.jpg").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.ConfirmSlip(context.Background(), orderID, 5, "slips/abc.jpg")
	require.ErrorIs(t, err, ErrOrderNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func linesRows(orderID string, lines []Line) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "order_id", "variant_id", "qty", "price_satang", "cost_satang"})
	for _, l := range lines {
		rows.AddRow(l.ID, orderID, l.VariantID, l.Qty, l.PriceSatang, l.CostSatang)
	}
	return rows
}

func TestCancelPendingCreditsEveryLine(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}
	orderID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders").
		WithArgs(orderID, int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(orderID))
	mock.ExpectQuery("SELECT id, order_id, variant_id, qty, price_satang, cost_satang FROM orderdetails").
		WithArgs(orderID).
		WillReturnRows(linesRows(orderID, []Line{
			{ID: 1, VariantID: 11, Qty: 3, PriceSatang: 40000, CostSatang: 25000},
			{ID: 2, VariantID: 12, Qty: 1, PriceSatang: 80000, CostSatang: 52000},
		}))
	// variant A credited 3
	mock.ExpectQuery("SELECT stock, price_satang, cost_satang FROM product_variants").
		WithArgs(int64(11)).
		WillReturnRows(variantRows(0, 40000, 25000))
	mock.ExpectExec(`UPDATE product_variants SET stock = stock \+`).
		WithArgs(int64(11), 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// variant B credited 1
	mock.ExpectQuery("SELECT stock, price_satang, cost_satang FROM product_variants").
		WithArgs(int64(12)).
		WillReturnRows(variantRows(2, 80000, 52000))
	mock.ExpectExec(`UPDATE product_variants SET stock = stock \+`).
		WithArgs(int64(12), 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE orders SET status='cancelled'").
		WithArgs(orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CancelPending(context.Background(), orderID, 9))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelPendingConflatesMissingAndWrongState(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}
	orderID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders").
		WithArgs(orderID, int64(9)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := repo.CancelPending(context.Background(), orderID, 9)
	require.ErrorIs(t, err, ErrNotCancellable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePendingRestocksThenDeletes(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}
	orderID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders").
		WithArgs(orderID, int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(orderID))
	mock.ExpectQuery("SELECT id, order_id, variant_id, qty, price_satang, cost_satang FROM orderdetails").
		WithArgs(orderID).
		WillReturnRows(linesRows(orderID, []Line{
			{ID: 1, VariantID: 7, Qty: 2, PriceSatang: 50000, CostSatang: 32000},
		}))
	mock.ExpectQuery("SELECT stock, price_satang, cost_satang FROM product_variants").
		WithArgs(int64(7)).
		WillReturnRows(variantRows(3, 50000, 32000))
	mock.ExpectExec(`UPDATE product_variants SET stock = stock \+`).
		WithArgs(int64(7), 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM orderdetails").
		WithArgs(orderID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM orders").
		WithArgs(orderID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeletePending(context.Background(), orderID, 9))
	require.NoError(t, mock.ExpectationsWereMet())
}
