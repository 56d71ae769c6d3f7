package entity

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Store interface {
	MarkCompleted(ctx context.Context, ref Ref) (int64, error)
	MarkFailed(ctx context.Context, ref Ref) (int64, error)
}

type store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &store{db: db}
}

func (s *store) MarkCompleted(ctx context.Context, ref Ref) (int64, error) {
	tr, ok := TransitionFor(ref.Type)
	if !ok {
		return 0, ErrUnknownType
	}
	return s.apply(ctx, ref, tr, tr.Completed)
}

func (s *store) MarkFailed(ctx context.Context, ref Ref) (int64, error) {
	tr, ok := TransitionFor(ref.Type)
	if !ok {
		return 0, ErrUnknownType
	}
	return s.apply(ctx, ref, tr, tr.Failed)
}

// apply sets the entity's status column. Table and column names come from the
// fixed transition table, never from input. Returns rows affected so callers
// can spot a missing entity row.
func (s *store) apply(ctx context.Context, ref Ref, tr Transition, state string) (int64, error) {
	var query string
	var args []interface{}

	if tr.KeyedByBuyer {
		query = fmt.Sprintf(`UPDATE %s SET %s = $1, updated_at = NOW() WHERE product_id = $2 AND buyer_id = $3`, tr.Table, tr.Column)
		args = []interface{}{state, ref.ID, ref.BuyerID}
	} else {
		query = fmt.Sprintf(`UPDATE %s SET %s = $1, updated_at = NOW() WHERE id = $2`, tr.Table, tr.Column)
		args = []interface{}{state, ref.ID}
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
