package pages

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CopyForTranslation materialises source into the target locale. The call is
// idempotent: an existing row for the translation key and locale is returned
// untouched. Parents are resolved in the target locale; the shared absolute
// root is reused as-is.
func (s *service) CopyForTranslation(ctx context.Context, source *Page, targetLocaleID uuid.UUID, opts CopyOptions) (*Page, error) {
	if source == nil {
		return nil, ErrCopySourceRequired
	}

	existing, err := s.repo.GetTranslation(ctx, source.TranslationKey, targetLocaleID)
	if err == nil {
		return existing, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	parentID, err := s.resolveTargetParent(ctx, source, targetLocaleID, opts)
	if err != nil {
		return nil, err
	}

	req := CreatePageRequest{
		TranslationKey: source.TranslationKey,
		LocaleID:       targetLocaleID,
		ParentID:       parentID,
		ContentType:    source.ContentType,
		Title:          source.Title,
		Slug:           source.Slug,
		Live:           opts.KeepLive && source.Live,
	}
	if opts.Alias {
		// Placeholders always point at a real row.
		aliasOf := source.ID
		if source.IsAlias() {
			aliasOf = *source.AliasOfID
		}
		req.AliasOfID = &aliasOf
	}

	s.logger.Debug("pages.copy_for_translation",
		"source_id", source.ID,
		"translation_key", source.TranslationKey,
		"target_locale_id", targetLocaleID,
		"alias", opts.Alias,
	)
	return s.Create(ctx, req)
}

func (s *service) resolveTargetParent(ctx context.Context, source *Page, targetLocaleID uuid.UUID, opts CopyOptions) (*uuid.UUID, error) {
	if source.ParentID == nil {
		return nil, nil
	}
	parent, err := s.repo.GetByID(ctx, *source.ParentID)
	if err != nil {
		return nil, fmt.Errorf("resolve source parent: %w", err)
	}
	if parent.IsRoot() {
		return &parent.ID, nil
	}

	translated, err := s.repo.GetTranslation(ctx, parent.TranslationKey, targetLocaleID)
	if err == nil {
		return &translated.ID, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}
	if !opts.CopyParents {
		return nil, fmt.Errorf("%w: %s", ErrParentNotTranslated, parent.TranslationKey)
	}

	copied, err := s.CopyForTranslation(ctx, parent, targetLocaleID, opts)
	if err != nil {
		return nil, err
	}
	return &copied.ID, nil
}
