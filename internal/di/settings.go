package di

import (
	"context"
	"fmt"

	"github.com/goliatone/go-treesync/internal/languageconfig"
)

// liveSettings writes through to the settings repository and refreshes the
// resolver and the feature gate before a write returns. Writes made on the
// underlying repository still reach them through the settings watchers.
type liveSettings struct {
	languageconfig.Repository
	container *Container
	load      languageconfig.Loader
}

var _ languageconfig.Repository = (*liveSettings)(nil)

func (s *liveSettings) Upsert(ctx context.Context, settings languageconfig.Settings) (languageconfig.Settings, error) {
	stored, err := s.Repository.Upsert(ctx, settings)
	if err != nil {
		return stored, err
	}
	return stored, s.refresh(ctx)
}

func (s *liveSettings) Delete(ctx context.Context) error {
	if err := s.Repository.Delete(ctx); err != nil {
		return err
	}
	return s.refresh(ctx)
}

func (s *liveSettings) refresh(ctx context.Context) error {
	if err := s.container.resolver.Refresh(ctx, s.load); err != nil {
		return fmt.Errorf("di: apply language settings: %w", err)
	}
	if err := s.container.state.Refresh(ctx, s.load); err != nil {
		return fmt.Errorf("di: apply language settings: %w", err)
	}
	return nil
}
