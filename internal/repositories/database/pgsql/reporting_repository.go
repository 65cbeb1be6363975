package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(pool *pgxpool.Pool) *reportingRepository {
	return &reportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// SumLinesByAccount aggregates posted lines per account. Nil bounds are passed as NULL and left open.
func (r *reportingRepository) SumLinesByAccount(ctx context.Context, companyID string, filter domain.ActivityFilter) ([]domain.AccountActivity, error) {
	query := `
		SELECT l.account_id, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.company_id = $1
		  AND e.posted
		  AND ($2::date IS NULL OR e.entry_date >= $2::date)
		  AND ($3::date IS NULL OR e.entry_date <= $3::date)
		GROUP BY l.account_id
		ORDER BY l.account_id;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate journal lines for company %s: %w", companyID, err)
	}
	defer rows.Close()

	activity := []domain.AccountActivity{}
	for rows.Next() {
		var a domain.AccountActivity
		if err := rows.Scan(&a.AccountID, &a.Debit, &a.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan account activity row: %w", err)
		}
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account activity rows: %w", err)
	}
	return activity, nil
}
