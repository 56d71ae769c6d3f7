package fees

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func recordRows(recs ...Record) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "transaction_id", "transaction_type", "payer_id", "payee_id",
		"subtotal_cents", "platform_fee_cents", "processing_fee_cents", "total_fees_cents",
		"creator_payout_cents", "currency", "status", "payout_status", "payout_id",
		"created_at", "updated_at",
	})
	for _, rec := range recs {
		rows.AddRow(rec.ID, rec.TransactionID, rec.TransactionType, rec.PayerID, rec.PayeeID,
			rec.SubtotalCents, rec.PlatformFeeCents, rec.ProcessingFeeCents, rec.TotalFeesCents,
			rec.CreatorPayoutCents, rec.Currency, rec.Status, rec.PayoutStatus, rec.PayoutID,
			time.Now(), time.Now())
	}
	return rows
}

func TestCreateRecord(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	want := Record{
		ID: 1, TransactionID: "order_7", TransactionType: CategoryMarketplace,
		PayerID: 2, PayeeID: 3, SubtotalCents: 1000, PlatformFeeCents: 80,
		ProcessingFeeCents: 55, TotalFeesCents: 135, CreatorPayoutCents: 920,
		Currency: "USD", Status: StatusPending, PayoutStatus: PayoutStatusPending,
	}

	mock.ExpectQuery("INSERT INTO platform_fees").
		WithArgs("order_7", CategoryMarketplace, 2, 3,
			int64(1000), int64(80), int64(55), int64(135), int64(920), "USD").
		WillReturnRows(recordRows(want))

	got, err := repo.Create(context.Background(), &Record{
		TransactionID: "order_7", TransactionType: CategoryMarketplace,
		PayerID: 2, PayeeID: 3, SubtotalCents: 1000, PlatformFeeCents: 80,
		ProcessingFeeCents: 55, TotalFeesCents: 135, CreatorPayoutCents: 920,
		Currency: "USD",
	})
	require.NoError(t, err)
	require.Equal(t, 1, got.ID)
	require.Equal(t, StatusPending, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectByTransactionReturnsChangedRows(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	collected := Record{
		ID: 5, TransactionID: "order_7", TransactionType: CategoryMarketplace,
		PayerID: 2, PayeeID: 3, SubtotalCents: 1000, PlatformFeeCents: 80,
		ProcessingFeeCents: 55, TotalFeesCents: 135, CreatorPayoutCents: 920,
		Currency: "USD", Status: StatusCollected, PayoutStatus: PayoutStatusPending,
	}

	mock.ExpectQuery("UPDATE platform_fees").
		WithArgs("order_7").
		WillReturnRows(recordRows(collected))

	recs, err := repo.CollectByTransaction(context.Background(), "order_7")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, StatusCollected, recs[0].Status)

	// Second delivery: the conditional update finds nothing pending.
	mock.ExpectQuery("UPDATE platform_fees").
		WithArgs("order_7").
		WillReturnRows(recordRows())

	recs, err = repo.CollectByTransaction(context.Background(), "order_7")
	require.NoError(t, err)
	require.Empty(t, recs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefundByTransaction(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec("UPDATE platform_fees").
		WithArgs("tip_9").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.RefundByTransaction(context.Background(), "tip_9")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectedUnreserved(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	rec := Record{
		ID: 8, TransactionID: "order_9", TransactionType: CategoryMarketplace,
		PayeeID: 3, CreatorPayoutCents: 500, Currency: "USD",
		Status: StatusCollected, PayoutStatus: PayoutStatusPending,
	}

	mock.ExpectQuery("SELECT (.+) FROM platform_fees").
		WithArgs(3).
		WillReturnRows(recordRows(rec))

	recs, err := repo.CollectedUnreserved(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, int64(500), recs[0].CreatorPayoutCents)
	require.NoError(t, mock.ExpectationsWereMet())
}
