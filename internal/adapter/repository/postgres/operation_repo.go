package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/usecase"
)

// operationKeyConstraint is the unique index on operations.idempotency_key.
// A violation means another transaction committed the same key first; the
// retrier re-runs the attempt, which then resolves via replay.
const operationKeyConstraint = "operations_idempotency_key_key"

// OperationRepository implements usecase.OperationRepository.
type OperationRepository struct {
	pool *pgxpool.Pool
}

// NewOperationRepository creates a new OperationRepository.
func NewOperationRepository(pool *pgxpool.Pool) *OperationRepository {
	return &OperationRepository{pool: pool}
}

const operationColumns = `id, source_account_id, destination_account_id, amount, kind, status, idempotency_key, failure_reason, created_at`

// Create persists an operation row within a transaction. Only terminal rows
// are ever written.
func (r *OperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error {
	q := r.querier(tx)

	_, err := q.Exec(ctx, `
		INSERT INTO operations (id, source_account_id, destination_account_id, amount, kind, status, idempotency_key, failure_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		op.ID,
		ptrToText(op.SourceAccountID),
		ptrToText(op.DestinationAccountID),
		decimalToNumeric(op.Amount),
		string(op.Kind),
		string(op.Status),
		op.IdempotencyKey,
		op.FailureReason,
		timeToPgTimestamptz(op.CreatedAt),
	)

	return err
}

// GetByID retrieves an operation by ID.
func (r *OperationRepository) GetByID(ctx context.Context, id string) (*domain.Operation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+operationColumns+`
		FROM operations
		WHERE id = $1`,
		id,
	)

	return r.scanOne(row)
}

// GetByIdempotencyKey retrieves an operation by its idempotency key.
func (r *OperationRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Operation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+operationColumns+`
		FROM operations
		WHERE idempotency_key = $1`,
		key,
	)

	return r.scanOne(row)
}

// ListByAccount lists operations touching an account, newest first.
func (r *OperationRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+operationColumns+`
		FROM operations
		WHERE source_account_id = $1 OR destination_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		accountID,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []*domain.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}

		ops = append(ops, op)
	}

	return ops, rows.Err()
}

func (r *OperationRepository) querier(tx usecase.Transaction) querier {
	if tx == nil {
		return r.pool
	}

	return tx.(*Tx).PgxTx()
}

func (r *OperationRepository) scanOne(row pgx.Row) (*domain.Operation, error) {
	op, err := scanOperation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}

		return nil, err
	}

	return op, nil
}

func scanOperation(row pgx.Row) (*domain.Operation, error) {
	var (
		op      domain.Operation
		source  pgtype.Text
		dest    pgtype.Text
		amount  pgtype.Numeric
		kind    string
		status  string
		created pgtype.Timestamptz
	)

	err := row.Scan(
		&op.ID,
		&source,
		&dest,
		&amount,
		&kind,
		&status,
		&op.IdempotencyKey,
		&op.FailureReason,
		&created,
	)
	if err != nil {
		return nil, err
	}

	op.SourceAccountID = textToPtr(source)
	op.DestinationAccountID = textToPtr(dest)
	op.Amount = numericToDecimal(amount)
	op.Kind = domain.OperationKind(kind)
	op.Status = domain.OperationStatus(status)
	op.CreatedAt = created.Time

	return &op, nil
}

// isDuplicateKey reports whether err is a unique violation on the
// idempotency key index.
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation && pgErr.ConstraintName == operationKeyConstraint
	}

	return false
}
