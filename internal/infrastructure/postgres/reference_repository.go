package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/metrics"
)

// ReferenceRepository checks the existence of catalog entries referenced by
// videos. One instance serves one table.
type ReferenceRepository[ID ~string] struct {
	db    DBTX
	table string
}

// NewCategoryRepository creates a repository over the categories table.
func NewCategoryRepository(db DBTX) *ReferenceRepository[model.CategoryID] {
	return &ReferenceRepository[model.CategoryID]{db: db, table: metrics.TableCategories}
}

// NewGenreRepository creates a repository over the genres table.
func NewGenreRepository(db DBTX) *ReferenceRepository[model.GenreID] {
	return &ReferenceRepository[model.GenreID]{db: db, table: metrics.TableGenres}
}

// NewCastMemberRepository creates a repository over the cast_members table.
func NewCastMemberRepository(db DBTX) *ReferenceRepository[model.CastMemberID] {
	return &ReferenceRepository[model.CastMemberID]{db: db, table: metrics.TableCastMembers}
}

// ExistsByIDs returns the subset of ids present in the table using one query.
func (r *ReferenceRepository[ID]) ExistsByIDs(ctx context.Context, ids []ID) ([]ID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := "SELECT id FROM " + r.table + " WHERE id = ANY($1)"

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, r.table).Inc()
	rows, err := r.db.Query(ctx, query, model.IDStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.table, err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", r.table, err)
	}

	return model.ParseIDs[ID](found), nil
}

var (
	_ repository.CategoryRepository   = (*ReferenceRepository[model.CategoryID])(nil)
	_ repository.GenreRepository      = (*ReferenceRepository[model.GenreID])(nil)
	_ repository.CastMemberRepository = (*ReferenceRepository[model.CastMemberID])(nil)
)
