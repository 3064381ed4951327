package mysql

import (
	"context"
	"database/sql"
	stdErrors "errors"

	gomysql "github.com/go-sql-driver/mysql"

	"Hedera-Agent-Economy/internal/economy"
	xerrors "Hedera-Agent-Economy/internal/errors"
)

// ErrSettlementExists 表示同一引用编号的流水已经入库。
var ErrSettlementExists = xerrors.New(xerrors.CodeConflict, "结算流水已存在")

// SettlementStore 将结算流水写入 MySQL。内存账本仍是唯一事实来源，
// 落库副本用于事后审计与跨进程查询。
type SettlementStore struct {
	db *sql.DB
}

var _ economy.SettlementArchive = (*SettlementStore)(nil)

// NewSettlementStore 创建连接池并执行待应用的迁移。
func NewSettlementStore(ctx context.Context, cfg Config) (*SettlementStore, error) {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := &SettlementStore{db: db}
	if err := store.runMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Archive 将一笔流水写入 settlements 表。
func (s *SettlementStore) Archive(ctx context.Context, tx economy.Transaction) error {
	const stmt = `INSERT INTO settlements
        (tx_id, task_id, worker_id, amount_hbar, duration_ms, settled_at, mock)
        VALUES (?, ?, ?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, stmt,
		tx.TxID,
		tx.TaskID,
		tx.WorkerID,
		tx.AmountHBAR,
		tx.DurationMS,
		tx.Timestamp,
		tx.Mock,
	); err != nil {
		var mysqlErr *gomysql.MySQLError
		if stdErrors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrSettlementExists
		}
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "写入结算流水失败")
	}
	return nil
}

// ListLatest 返回最近入库的若干笔流水，按入库顺序倒排。
func (s *SettlementStore) ListLatest(ctx context.Context, limit int) ([]economy.Transaction, error) {
	if limit <= 0 {
		limit = economy.DefaultTransactionLimit
	}

	rows, err := s.db.QueryContext(ctx, `SELECT tx_id, task_id, worker_id, amount_hbar, duration_ms, settled_at, mock
        FROM settlements ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询结算流水失败")
	}
	defer rows.Close()

	var records []economy.Transaction
	for rows.Next() {
		var tx economy.Transaction
		if err := rows.Scan(&tx.TxID, &tx.TaskID, &tx.WorkerID, &tx.AmountHBAR, &tx.DurationMS, &tx.Timestamp, &tx.Mock); err != nil {
			return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "解析结算流水失败")
		}
		records = append(records, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "遍历结算流水失败")
	}
	return records, nil
}

// Close 关闭底层数据库连接。
func (s *SettlementStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
