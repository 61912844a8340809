package languageconfig

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const settingsRowID = 1

// BunRepository persists language settings using a Bun-backed database.
type BunRepository struct {
	db          *bun.DB
	broadcaster *Broadcaster
}

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:          db,
		broadcaster: NewBroadcaster(),
	}
}

// Get returns the persisted language settings.
func (r *BunRepository) Get(ctx context.Context) (Settings, error) {
	model, err := r.load(ctx)
	if err != nil {
		return Settings{}, err
	}
	return modelToSettings(model), nil
}

// Upsert creates or updates the persisted language settings.
func (r *BunRepository) Upsert(ctx context.Context, settings Settings) (Settings, error) {
	existing, err := r.load(ctx)
	created := false
	if err != nil {
		if !errors.Is(err, ErrSettingsNotFound) {
			return Settings{}, err
		}
		created = true
	}
	normalized := settings.Normalized()
	if !created && modelToSettings(existing).Equal(normalized) {
		return normalized, nil
	}

	model := modelFromSettings(normalized)
	model.ID = settingsRowID
	model.UpdatedAt = time.Now().UTC()

	if created {
		if _, err := r.db.NewInsert().Model(&model).Exec(ctx); err != nil {
			return Settings{}, err
		}
	} else {
		if _, err := r.db.NewUpdate().
			Model(&model).
			Column("default_language", "supported_languages", "placeholders_enabled", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return Settings{}, err
		}
	}

	stored, err := r.Get(ctx)
	if err != nil {
		return Settings{}, err
	}

	eventType := ChangeUpdated
	if created {
		eventType = ChangeCreated
	}
	r.broadcaster.Broadcast(newChangeEvent(eventType, stored))
	return stored, nil
}

// Delete clears persisted settings.
func (r *BunRepository) Delete(ctx context.Context) error {
	model, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, err := r.db.NewDelete().Model(model).WherePK().Exec(ctx); err != nil {
		return err
	}
	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, Settings{}))
	return nil
}

// Subscribe delivers change events until the context is cancelled.
func (r *BunRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

func (r *BunRepository) load(ctx context.Context) (*SettingsModel, error) {
	if r.db == nil {
		return nil, errors.New("languageconfig: bun repository requires a database")
	}
	var model SettingsModel
	if err := r.db.NewSelect().Model(&model).Where("id = ?", settingsRowID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	return &model, nil
}

// SettingsModel is the single-row table backing BunRepository.
type SettingsModel struct {
	bun.BaseModel `bun:"table:language_settings"`

	ID                  int       `bun:",pk"`
	DefaultLanguage     string    `bun:"default_language,notnull"`
	SupportedLanguages  string    `bun:"supported_languages,notnull"`
	PlaceholdersEnabled bool      `bun:"placeholders_enabled,notnull"`
	UpdatedAt           time.Time `bun:"updated_at"`
}

func modelFromSettings(settings Settings) SettingsModel {
	return SettingsModel{
		DefaultLanguage:     settings.DefaultLanguage,
		SupportedLanguages:  strings.Join(settings.SupportedLanguages, ","),
		PlaceholdersEnabled: settings.PlaceholdersEnabled,
	}
}

func modelToSettings(model *SettingsModel) Settings {
	if model == nil {
		return Settings{}
	}
	settings := Settings{
		DefaultLanguage:     model.DefaultLanguage,
		PlaceholdersEnabled: model.PlaceholdersEnabled,
	}
	if model.SupportedLanguages != "" {
		settings.SupportedLanguages = strings.Split(model.SupportedLanguages, ",")
	}
	return settings.Normalized()
}
