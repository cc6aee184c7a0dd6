package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/devaqn/financeira-bot/internal/category"
	"github.com/devaqn/financeira-bot/internal/domain"
)

// CategoryRepository persists the category table seeded from configuration.
type CategoryRepository interface {
	// Sync upserts every definition and returns the categories in the
	// definitions' declaration order, so the classifier tie-break follows
	// the configuration file and not database ids.
	Sync(ctx context.Context, defs []category.Definition) ([]domain.Category, error)
}

type categoryRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewCategoryRepository creates a SQL-backed category repository.
func NewCategoryRepository(db *sql.DB, log *slog.Logger) CategoryRepository {
	return &categoryRepository{
		db:  db,
		log: log,
	}
}

func (r *categoryRepository) Sync(ctx context.Context, defs []category.Definition) ([]domain.Category, error) {
	const query = `
		INSERT INTO categories (name, emoji, keywords)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
			SET emoji = EXCLUDED.emoji, keywords = EXCLUDED.keywords
		RETURNING id
	`

	categories := make([]domain.Category, 0, len(defs))
	for _, def := range defs {
		var id int64
		err := r.db.QueryRowContext(ctx, query, def.Name, def.Emoji, strings.Join(def.Keywords, ",")).Scan(&id)
		if err != nil {
			if r.log != nil {
				r.log.Error("failed to sync category", slog.String("name", def.Name), slog.Any("error", err))
			}
			return nil, fmt.Errorf("sync category %q: %w", def.Name, err)
		}

		categories = append(categories, domain.Category{
			ID:       id,
			Name:     def.Name,
			Emoji:    def.Emoji,
			Keywords: def.Keywords,
		})
	}

	return categories, nil
}
