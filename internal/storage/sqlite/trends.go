package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/curebird/backend/internal/core"
)

// TrendsRepo is the curated local intelligence store: the last known
// good aggregation survives restarts and serves as the final fallback
// when both the live API and the snapshot file are unusable.
type TrendsRepo struct {
	db *sql.DB
}

func NewTrendsRepo(db *sql.DB) *TrendsRepo {
	return &TrendsRepo{db: db}
}

func (r *TrendsRepo) Save(ctx context.Context, trends []core.DiseaseTrend) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO disease_trends (disease, outbreaks, year, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(disease) DO UPDATE SET
			outbreaks = excluded.outbreaks,
			year = excluded.year,
			updated_at = CURRENT_TIMESTAMP`

	for _, t := range trends {
		if t.Disease == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, query, t.Disease, t.Outbreaks, t.Year); err != nil {
			return fmt.Errorf("failed to upsert trend %q: %w", t.Disease, err)
		}
	}

	return tx.Commit()
}

func (r *TrendsRepo) Load(ctx context.Context) ([]core.DiseaseTrend, error) {
	query := `SELECT disease, outbreaks, year FROM disease_trends ORDER BY outbreaks DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trends: %w", err)
	}
	defer rows.Close()

	var trends []core.DiseaseTrend
	for rows.Next() {
		var t core.DiseaseTrend
		var year sql.NullString
		if err := rows.Scan(&t.Disease, &t.Outbreaks, &year); err != nil {
			return nil, fmt.Errorf("failed to scan trend: %w", err)
		}
		t.Year = year.String
		t.Source = "Local Archive"
		trends = append(trends, t)
	}

	return trends, rows.Err()
}
