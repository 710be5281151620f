package database

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/honguyenminh/is216-library-manager/util/apperr"
)

func New(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// TxManager runs a function inside one transaction: commit on nil,
// rollback otherwise. Services depend on this interface so tests can run
// the function without a database.
type TxManager interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type txManager struct{ db *sql.DB }

func NewTxManager(db *sql.DB) TxManager { return &txManager{db: db} }

func (m *txManager) InTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Infra(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return apperr.Infra(err)
	}
	return nil
}
