package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/usecase"
)

// ApprovalRepository implements usecase.ApprovalRepository.
type ApprovalRepository struct {
	pool *pgxpool.Pool
}

// NewApprovalRepository creates a new ApprovalRepository.
func NewApprovalRepository(pool *pgxpool.Pool) *ApprovalRepository {
	return &ApprovalRepository{pool: pool}
}

const approvalColumns = `id, kind, source_account_id, destination_account_id, amount, requested_by, note, state, decided_by, decided_at, operation_id, created_at, updated_at`

// Create creates a new pending approval.
func (r *ApprovalRepository) Create(ctx context.Context, approval *domain.Approval) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO approvals (id, kind, source_account_id, destination_account_id, amount, requested_by, note, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		approval.ID,
		string(approval.Kind),
		ptrToText(approval.SourceAccountID),
		ptrToText(approval.DestinationAccountID),
		decimalToNumeric(approval.Amount),
		approval.RequestedBy,
		approval.Note,
		string(approval.State),
		timeToPgTimestamptz(approval.CreatedAt),
		timeToPgTimestamptz(approval.UpdatedAt),
	)

	return err
}

// GetByID retrieves an approval by ID.
func (r *ApprovalRepository) GetByID(ctx context.Context, id string) (*domain.Approval, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+approvalColumns+`
		FROM approvals
		WHERE id = $1`,
		id,
	)

	return scanApprovalRow(row)
}

// GetByIDForUpdate retrieves an approval with a FOR UPDATE lock, so two
// racing deciders serialize on the row.
func (r *ApprovalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Approval, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT `+approvalColumns+`
		FROM approvals
		WHERE id = $1
		FOR UPDATE`,
		id,
	)

	return scanApprovalRow(row)
}

// UpdateDecision writes the decided state within a transaction.
func (r *ApprovalRepository) UpdateDecision(ctx context.Context, tx usecase.Transaction, approval *domain.Approval) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE approvals
		SET state = $2, decided_by = $3, decided_at = $4, note = $5, updated_at = $6
		WHERE id = $1`,
		approval.ID,
		string(approval.State),
		ptrToText(approval.DecidedBy),
		ptrTimeToPgTimestamptz(approval.DecidedAt),
		approval.Note,
		timeToPgTimestamptz(approval.UpdatedAt),
	)

	return err
}

// SetOperationID links an approval to the operation its approval produced.
func (r *ApprovalRepository) SetOperationID(ctx context.Context, approvalID, operationID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE approvals
		SET operation_id = $2
		WHERE id = $1`,
		approvalID,
		operationID,
	)

	return err
}

// ListPending lists approvals awaiting a decision, oldest first.
func (r *ApprovalRepository) ListPending(ctx context.Context, limit, offset int) ([]*domain.Approval, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+approvalColumns+`
		FROM approvals
		WHERE state = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`,
		string(domain.ApprovalPending),
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []*domain.Approval
	for rows.Next() {
		approval, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}

		approvals = append(approvals, approval)
	}

	return approvals, rows.Err()
}

func scanApprovalRow(row pgx.Row) (*domain.Approval, error) {
	approval, err := scanApproval(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrApprovalNotFound
		}

		return nil, err
	}

	return approval, nil
}

func scanApproval(row pgx.Row) (*domain.Approval, error) {
	var (
		approval    domain.Approval
		kind        string
		source      pgtype.Text
		dest        pgtype.Text
		amount      pgtype.Numeric
		state       string
		decidedBy   pgtype.Text
		decidedAt   pgtype.Timestamptz
		operationID pgtype.Text
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&approval.ID,
		&kind,
		&source,
		&dest,
		&amount,
		&approval.RequestedBy,
		&approval.Note,
		&state,
		&decidedBy,
		&decidedAt,
		&operationID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	approval.Kind = domain.OperationKind(kind)
	approval.SourceAccountID = textToPtr(source)
	approval.DestinationAccountID = textToPtr(dest)
	approval.Amount = numericToDecimal(amount)
	approval.State = domain.ApprovalState(state)
	approval.DecidedBy = textToPtr(decidedBy)
	approval.DecidedAt = pgTimestamptzToPtrTime(decidedAt)
	approval.OperationID = textToPtr(operationID)
	approval.CreatedAt = createdAt.Time
	approval.UpdatedAt = updatedAt.Time

	return &approval, nil
}
