package entity

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderIDEncoding(t *testing.T) {
	assert.Equal(t, "commission_42", Ref{Type: TypeCommission, ID: 42}.OrderID())
	assert.Equal(t, "lodging_booking_7", Ref{Type: TypeLodgingBooking, ID: 7}.OrderID())
	assert.Equal(t, "digital_product_4_9", Ref{Type: TypeDigitalProduct, ID: 4, BuyerID: 9}.OrderID())
}

func TestRefValid(t *testing.T) {
	assert.True(t, Ref{Type: TypeOrder, ID: 1}.Valid())
	assert.True(t, Ref{Type: TypeDigitalProduct, ID: 1, BuyerID: 2}.Valid())

	assert.False(t, Ref{Type: TypeOrder}.Valid())
	assert.False(t, Ref{Type: Type("voucher"), ID: 1}.Valid())
	assert.False(t, Ref{Type: TypeDigitalProduct, ID: 1}.Valid())
}

func TestTransitionTableIsExhaustive(t *testing.T) {
	for _, typ := range Types() {
		tr, ok := TransitionFor(typ)
		require.True(t, ok, "missing transition for %s", typ)
		assert.NotEmpty(t, tr.Table, "%s has no table", typ)
		assert.NotEmpty(t, tr.Column, "%s has no column", typ)
		assert.NotEmpty(t, tr.Completed, "%s has no completed state", typ)
		assert.NotEmpty(t, tr.Failed, "%s has no failed state", typ)
		assert.NotEqual(t, tr.Completed, tr.Failed, "%s states must differ", typ)
	}
}

func setupStore(t *testing.T) (Store, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewStore(sqlxDB), mock, func() { sqlxDB.Close() }
}

func TestMarkCompletedSubscription(t *testing.T) {
	store, mock, close := setupStore(t)
	defer close()

	mock.ExpectExec("UPDATE subscriptions SET status").
		WithArgs("active", 12).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.MarkCompleted(context.Background(), Ref{Type: TypeSubscription, ID: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailedLodgingBooking(t *testing.T) {
	store, mock, close := setupStore(t)
	defer close()

	mock.ExpectExec("UPDATE lodging_bookings SET status").
		WithArgs("cancelled", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.MarkFailed(context.Background(), Ref{Type: TypeLodgingBooking, ID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkCompletedDigitalProductKeyedByBuyer(t *testing.T) {
	store, mock, close := setupStore(t)
	defer close()

	mock.ExpectExec("UPDATE digital_purchases SET status").
		WithArgs("completed", 4, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.MarkCompleted(context.Background(), Ref{Type: TypeDigitalProduct, ID: 4, BuyerID: 9})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkCompletedUnknownType(t *testing.T) {
	store, _, close := setupStore(t)
	defer close()

	_, err := store.MarkCompleted(context.Background(), Ref{Type: Type("voucher"), ID: 1})
	assert.ErrorIs(t, err, ErrUnknownType)
}
