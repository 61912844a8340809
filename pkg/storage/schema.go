package storage

import (
	"context"
	"fmt"

	"github.com/goliatone/go-treesync/internal/languageconfig"
	"github.com/goliatone/go-treesync/internal/locales"
	"github.com/goliatone/go-treesync/internal/pages"
	"github.com/uptrace/bun"
)

// Models lists the tables owned by treesync in creation order.
func Models() []any {
	return []any{
		(*locales.Locale)(nil),
		(*pages.Page)(nil),
		(*languageconfig.SettingsModel)(nil),
	}
}

// CreateSchema creates the locales, pages and language_settings tables along
// with the lookup indexes used by the content index. Existing tables are kept.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		name    string
		model   any
		columns []string
	}{
		{name: "pages_locale_depth_idx", model: (*pages.Page)(nil), columns: []string{"locale_id", "depth"}},
		{name: "pages_alias_of_idx", model: (*pages.Page)(nil), columns: []string{"alias_of_id"}},
		{name: "pages_parent_idx", model: (*pages.Page)(nil), columns: []string{"parent_id"}},
	}
	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("storage: create index %s: %w", idx.name, err)
		}
	}
	return nil
}
