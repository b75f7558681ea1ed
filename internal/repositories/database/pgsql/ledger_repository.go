package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	"github.com/SscSPs/blood_bank_app/internal/models"
	"github.com/SscSPs/blood_bank_app/internal/utils/mapping"
	"github.com/SscSPs/blood_bank_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	transactionColumns = `transaction_id, direction, blood_type, quantity, donor_id, organisation_id,
	hospital_id, contact_email, status, created_at, created_by`

	defaultQueryLimit = 50

	sumQuantitiesQuery = `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'in'), 0)::BIGINT,
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'out'), 0)::BIGINT,
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'in' AND status = 'expired'), 0)::BIGINT
		FROM inventory_transactions
		WHERE blood_type = $1 AND ($2::TEXT = '' OR organisation_id = $2::TEXT);
	`
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for inventory ledger entries.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// AppendTransaction inserts a single ledger entry outside any scope lock.
func (r *PgxLedgerRepository) AppendTransaction(ctx context.Context, txn domain.Transaction) error {
	return insertTransaction(ctx, r.Pool, txn)
}

func insertTransaction(ctx context.Context, db dbtx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO inventory_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := db.Exec(ctx, query,
		m.TransactionID,
		m.Direction,
		m.BloodType,
		m.Quantity,
		m.DonorID,
		m.OrganisationID,
		m.HospitalID,
		m.ContactEmail,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s already recorded", apperrors.ErrDuplicate, m.TransactionID)
		}
		return storageError("failed to insert transaction "+m.TransactionID, err)
	}
	return nil
}

// FindTransactionByID retrieves a ledger entry by its ID.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM inventory_transactions WHERE transaction_id = $1;`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, storageError("failed to query transaction "+transactionID, err)
	}
	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &txns[0], nil
}

// QueryTransactions lists entries matching the filter using keyset pagination on (created_at, transaction_id).
func (r *PgxLedgerRepository) QueryTransactions(ctx context.Context, filter domain.LedgerFilter) ([]domain.Transaction, *string, error) {
	var (
		conditions []string
		args       []any
	)
	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.OrganisationID != nil {
		addCondition("organisation_id = $%d", *filter.OrganisationID)
	}
	if filter.DonorID != nil {
		addCondition("donor_id = $%d", *filter.DonorID)
	}
	if filter.HospitalID != nil {
		addCondition("hospital_id = $%d", *filter.HospitalID)
	}
	if filter.BloodType != nil {
		addCondition("blood_type = $%d", string(*filter.BloodType))
	}
	if filter.Direction != nil {
		addCondition("direction = $%d", string(*filter.Direction))
	}
	if filter.CreatedFrom != nil {
		addCondition("created_at >= $%d", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		addCondition("created_at <= $%d", *filter.CreatedTo)
	}

	order, cmp := "DESC", "<"
	if filter.Ascending {
		order, cmp = "ASC", ">"
	}

	if filter.NextToken != nil && *filter.NextToken != "" {
		cursorAt, cursorID, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, cursorAt, cursorID)
		conditions = append(conditions, fmt.Sprintf("(created_at, transaction_id) %s ($%d, $%d)", cmp, len(args)-1, len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	args = append(args, limit+1)

	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM inventory_transactions`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	fmt.Fprintf(&sb, " ORDER BY created_at %s, transaction_id %s LIMIT $%d;", order, order, len(args))

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, nil, storageError("failed to query transactions", err)
	}
	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(txns) > limit {
		last := txns[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		nextToken = &token
		txns = txns[:limit]
	}
	return txns, nextToken, nil
}

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		var m models.InventoryTransaction
		if err := rows.Scan(
			&m.TransactionID,
			&m.Direction,
			&m.BloodType,
			&m.Quantity,
			&m.DonorID,
			&m.OrganisationID,
			&m.HospitalID,
			&m.ContactEmail,
			&m.Status,
			&m.CreatedAt,
			&m.CreatedBy,
		); err != nil {
			return nil, storageError("failed to scan transaction row", err)
		}
		txns = append(txns, mapping.ToDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating transaction rows", err)
	}
	return txns, nil
}

// SumQuantities aggregates one blood type inside a scope ("" for every book).
func (r *PgxLedgerRepository) SumQuantities(ctx context.Context, bloodType domain.BloodType, scope string) (domain.QuantityTotals, error) {
	return sumQuantities(ctx, r.Pool, bloodType, scope)
}

func sumQuantities(ctx context.Context, db dbtx, bloodType domain.BloodType, scope string) (domain.QuantityTotals, error) {
	var totals domain.QuantityTotals
	err := db.QueryRow(ctx, sumQuantitiesQuery, string(bloodType), scope).Scan(&totals.TotalIn, &totals.TotalOut, &totals.ExpiredIn)
	if err != nil {
		return domain.QuantityTotals{}, storageError("failed to sum quantities", err)
	}
	return totals, nil
}

// SummarizeByBloodType aggregates every blood type inside a scope in one pass.
func (r *PgxLedgerRepository) SummarizeByBloodType(ctx context.Context, scope string) (map[domain.BloodType]domain.QuantityTotals, error) {
	query := `
		SELECT
			blood_type,
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'in'), 0)::BIGINT,
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'out'), 0)::BIGINT,
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'in' AND status = 'expired'), 0)::BIGINT
		FROM inventory_transactions
		WHERE $1::TEXT = '' OR organisation_id = $1::TEXT
		GROUP BY blood_type;
	`
	rows, err := r.Pool.Query(ctx, query, scope)
	if err != nil {
		return nil, storageError("failed to summarize inventory", err)
	}
	defer rows.Close()

	summary := make(map[domain.BloodType]domain.QuantityTotals)
	for rows.Next() {
		var (
			bloodType string
			totals    domain.QuantityTotals
		)
		if err := rows.Scan(&bloodType, &totals.TotalIn, &totals.TotalOut, &totals.ExpiredIn); err != nil {
			return nil, storageError("failed to scan summary row", err)
		}
		summary[domain.BloodType(bloodType)] = totals
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating summary rows", err)
	}
	return summary, nil
}

// FindScopesWithStock lists organisations with positive net stock, earliest book first.
func (r *PgxLedgerRepository) FindScopesWithStock(ctx context.Context, bloodType domain.BloodType) ([]string, error) {
	query := `
		WITH first_seen AS (
			SELECT organisation_id, MIN(created_at) AS first_at
			FROM inventory_transactions
			GROUP BY organisation_id
		), stock AS (
			SELECT organisation_id,
				SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END) AS net
			FROM inventory_transactions
			WHERE blood_type = $1
			GROUP BY organisation_id
		)
		SELECT s.organisation_id
		FROM stock s
		JOIN first_seen f ON f.organisation_id = s.organisation_id
		WHERE s.net > 0
		ORDER BY f.first_at, s.organisation_id;
	`
	rows, err := r.Pool.Query(ctx, query, string(bloodType))
	if err != nil {
		return nil, storageError("failed to find scopes with stock", err)
	}
	defer rows.Close()

	scopes := make([]string, 0)
	for rows.Next() {
		var org string
		if err := rows.Scan(&org); err != nil {
			return nil, storageError("failed to scan scope row", err)
		}
		scopes = append(scopes, org)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating scope rows", err)
	}
	return scopes, nil
}

// MarkExpired flips active in entries created at or before cutoff to expired.
func (r *PgxLedgerRepository) MarkExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE inventory_transactions
		SET status = 'expired'
		WHERE direction = 'in' AND status = 'active' AND created_at <= $1;
	`
	tag, err := r.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, storageError("failed to mark expired transactions", err)
	}
	return tag.RowsAffected(), nil
}

// WithScopeLock runs fn inside one database transaction holding a transaction-scoped
// advisory lock on (organisation, blood type). The lock is released at commit or rollback.
func (r *PgxLedgerRepository) WithScopeLock(ctx context.Context, organisationID string, bloodType domain.BloodType, fn func(tx portsrepo.LedgerTx) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	// Ignored once the transaction is committed
	defer r.Rollback(ctx, tx)

	lockKey := organisationID + ":" + string(bloodType)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0));`, lockKey); err != nil {
		return storageError("failed to acquire scope lock", err)
	}

	if err := fn(&pgxLedgerTx{tx: tx}); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

type pgxLedgerTx struct {
	tx pgx.Tx
}

func (t *pgxLedgerTx) SumQuantities(ctx context.Context, bloodType domain.BloodType, scope string) (domain.QuantityTotals, error) {
	return sumQuantities(ctx, t.tx, bloodType, scope)
}

func (t *pgxLedgerTx) AppendTransaction(ctx context.Context, txn domain.Transaction) error {
	return insertTransaction(ctx, t.tx, txn)
}
