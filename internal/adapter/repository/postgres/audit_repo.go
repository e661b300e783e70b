package postgres

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository. Entries are insert-only;
// there is no update or delete path.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Append writes one audit entry within a transaction.
func (r *AuditRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.AuditEntry) error {
	q := r.querier(tx)

	_, err := q.Exec(ctx, `
		INSERT INTO audit_entries (id, operation_id, account_id, delta, balance_before, balance_after, account_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID,
		entry.OperationID,
		entry.AccountID,
		decimalToNumeric(entry.Delta),
		decimalToNumeric(entry.BalanceBefore),
		decimalToNumeric(entry.BalanceAfter),
		entry.AccountVersion,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// ListByAccount lists audit entries for one account in commit order,
// optionally bounded by a time window.
func (r *AuditRepository) ListByAccount(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	sql := `
		SELECT id, operation_id, account_id, delta, balance_before, balance_after, account_version, created_at
		FROM audit_entries
		WHERE account_id = $1`

	args := []any{filter.AccountID}

	if filter.From != nil {
		args = append(args, *filter.From)
		sql += ` AND created_at >= $` + strconv.Itoa(len(args))
	}

	if filter.To != nil {
		args = append(args, *filter.To)
		sql += ` AND created_at < $` + strconv.Itoa(len(args))
	}

	args = append(args, filter.Limit)
	sql += `
		ORDER BY account_version
		LIMIT $` + strconv.Itoa(len(args))

	args = append(args, filter.Offset)
	sql += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// SumDeltas returns the sum of all deltas recorded for an account.
func (r *AuditRepository) SumDeltas(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var sum pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(delta), 0)
		FROM audit_entries
		WHERE account_id = $1`,
		accountID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func (r *AuditRepository) querier(tx usecase.Transaction) querier {
	if tx == nil {
		return r.pool
	}

	return tx.(*Tx).PgxTx()
}

func scanAuditEntry(row pgx.Row) (*domain.AuditEntry, error) {
	var (
		entry         domain.AuditEntry
		delta         pgtype.Numeric
		balanceBefore pgtype.Numeric
		balanceAfter  pgtype.Numeric
		createdAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.OperationID,
		&entry.AccountID,
		&delta,
		&balanceBefore,
		&balanceAfter,
		&entry.AccountVersion,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Delta = numericToDecimal(delta)
	entry.BalanceBefore = numericToDecimal(balanceBefore)
	entry.BalanceAfter = numericToDecimal(balanceAfter)
	entry.CreatedAt = createdAt.Time

	return &entry, nil
}
