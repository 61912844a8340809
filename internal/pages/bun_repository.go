package pages

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists pages using bun. Lookups by id may be served from
// the optional cache; tree and locale queries always hit the database so the
// synchroniser sees live state.
type BunRepository struct {
	db     *bun.DB
	repo   repository.Repository[*Page]
	cached repository.Repository[*Page]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache constructs a page Repository backed by bun with optional caching.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRepository {
	base := NewPageRepository(db)
	return &BunRepository{
		db:     db,
		repo:   base,
		cached: wrapWithCache(base, cacheService, keySerializer),
	}
}

func (r *BunRepository) Create(ctx context.Context, record *Page) (*Page, error) {
	if _, err := r.GetTranslation(ctx, record.TranslationKey, record.LocaleID); err == nil {
		return nil, ErrDuplicateTranslation
	} else if !IsNotFound(err) {
		return nil, err
	}
	created, err := r.cached.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
	}
	return created, nil
}

func (r *BunRepository) Update(ctx context.Context, record *Page) (*Page, error) {
	updated, err := r.cached.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"title",
			"slug",
			"path",
			"live",
			"alias_of_id",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, record.ID.String())
	}
	return updated, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	result, err := r.cached.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return result, nil
}

func (r *BunRepository) GetTranslation(ctx context.Context, translationKey, localeID uuid.UUID) (*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.translation_key = ?", translationKey).
				Where("?TableAlias.locale_id = ?", localeID)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, translationLookupKey(translationKey, localeID))
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Key: translationLookupKey(translationKey, localeID)}
	}
	return records[0], nil
}

func (r *BunRepository) List(ctx context.Context, opts ListOptions) ([]*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if opts.MinDepth > 0 {
				q = q.Where("?TableAlias.depth > ?", opts.MinDepth)
			}
			return applyAliasFilter(q, opts.Aliases)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.depth ASC, ?TableAlias.created_at ASC, ?TableAlias.id ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
	}
	return records, nil
}

func (r *BunRepository) LocalesForKey(ctx context.Context, translationKey uuid.UUID, filter AliasFilter) ([]uuid.UUID, error) {
	if r.db == nil {
		return nil, fmt.Errorf("page repository: database not configured")
	}
	var ids []uuid.UUID
	q := r.db.NewSelect().
		Model((*Page)(nil)).
		Column("locale_id").
		Where("?TableAlias.translation_key = ?", translationKey)
	q = applyAliasFilter(q, filter)
	if err := q.OrderExpr("?TableAlias.locale_id ASC").Scan(ctx, &ids); err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func (r *BunRepository) UpdateAliasOf(ctx context.Context, id, aliasOfID uuid.UUID) error {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return mapRepositoryError(err, id.String())
	}
	source := aliasOfID
	record.AliasOfID = &source
	record.UpdatedAt = time.Now().UTC()
	if _, err := r.cached.Update(ctx, record,
		repository.UpdateByID(id.String()),
		repository.UpdateColumns("alias_of_id", "updated_at"),
	); err != nil {
		return fmt.Errorf("update page alias: %w", err)
	}
	return nil
}

func applyAliasFilter(q *bun.SelectQuery, filter AliasFilter) *bun.SelectQuery {
	switch filter {
	case AliasesExcluded:
		return q.Where("?TableAlias.alias_of_id IS NULL")
	case AliasesOnly:
		return q.Where("?TableAlias.alias_of_id IS NOT NULL")
	default:
		return q
	}
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("page repository error: %w", err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
