package pages

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/goliatone/go-treesync/internal/logging"
	"github.com/goliatone/go-treesync/pkg/interfaces"
	"github.com/google/uuid"
)

// SaveEvent describes a persisted page write. Converted marks an update that
// turned a placeholder into a real row.
type SaveEvent struct {
	Page      *Page
	Created   bool
	Converted bool
}

// SaveObserver is notified synchronously after every page write. Returned
// errors are propagated to the caller of the write.
type SaveObserver interface {
	PageSaved(ctx context.Context, event SaveEvent) error
}

// SaveObserverFunc adapts a function into a SaveObserver.
type SaveObserverFunc func(ctx context.Context, event SaveEvent) error

// PageSaved implements SaveObserver.
func (f SaveObserverFunc) PageSaved(ctx context.Context, event SaveEvent) error {
	return f(ctx, event)
}

// CreatePageRequest captures the fields required to create a page row.
type CreatePageRequest struct {
	ID             uuid.UUID
	TranslationKey uuid.UUID
	LocaleID       uuid.UUID
	ParentID       *uuid.UUID
	AliasOfID      *uuid.UUID
	ContentType    string
	Title          string
	Slug           string
	Live           bool
}

// Validate checks the request carries the identifiers a row needs.
func (r CreatePageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.LocaleID, validation.By(requireUUID)),
		validation.Field(&r.ContentType, validation.Required),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Slug, validation.Required),
	)
}

// UpdatePageRequest captures editable page fields. Detach turns a placeholder
// into a real translation row.
type UpdatePageRequest struct {
	ID     uuid.UUID
	Title  string
	Live   bool
	Detach bool
}

// CopyOptions tunes CopyForTranslation.
type CopyOptions struct {
	// CopyParents creates missing ancestors in the target locale.
	CopyParents bool
	// Alias creates a placeholder pointing at the source row.
	Alias bool
	// KeepLive carries the source's live state onto the copy.
	KeepLive bool
}

// Service coordinates page writes and notifies save observers.
type Service interface {
	Create(ctx context.Context, req CreatePageRequest) (*Page, error)
	Update(ctx context.Context, req UpdatePageRequest) (*Page, error)
	Get(ctx context.Context, id uuid.UUID) (*Page, error)
	CopyForTranslation(ctx context.Context, source *Page, targetLocaleID uuid.UUID, opts CopyOptions) (*Page, error)
	Observe(observer SaveObserver)
}

// ServiceOption configures the page service.
type ServiceOption func(*service)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithLogger injects the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo   Repository
	now    func() time.Time
	logger interfaces.Logger

	mu        sync.RWMutex
	observers []SaveObserver
}

// NewService constructs a page service over the repository.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Observe(observer SaveObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
}

func (s *service) Create(ctx context.Context, req CreatePageRequest) (*Page, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	depth := RootDepth
	path := "/"
	if req.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("resolve parent page: %w", err)
		}
		depth = parent.Depth + 1
		path = joinPath(parent.Path, req.Slug)
	}

	now := s.now().UTC()
	record := &Page{
		ID:             req.ID,
		TranslationKey: req.TranslationKey,
		LocaleID:       req.LocaleID,
		ParentID:       cloneUUIDPointer(req.ParentID),
		AliasOfID:      cloneUUIDPointer(req.AliasOfID),
		ContentType:    strings.TrimSpace(req.ContentType),
		Title:          req.Title,
		Slug:           req.Slug,
		Path:           path,
		Depth:          depth,
		Live:           req.Live,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.TranslationKey == uuid.Nil {
		record.TranslationKey = uuid.New()
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("pages.created",
		"page_id", created.ID,
		"translation_key", created.TranslationKey,
		"locale_id", created.LocaleID,
		"alias", created.IsAlias(),
	)
	if err := s.notify(ctx, SaveEvent{Page: clonePage(created), Created: true}); err != nil {
		return created, err
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, req UpdatePageRequest) (*Page, error) {
	current, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	converted := req.Detach && current.IsAlias()
	current.Title = req.Title
	current.Live = req.Live
	if req.Detach {
		current.AliasOfID = nil
	}
	current.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return nil, err
	}
	if converted {
		s.logger.Debug("pages.placeholder_converted",
			"page_id", updated.ID,
			"translation_key", updated.TranslationKey,
			"locale_id", updated.LocaleID,
		)
	}
	if err := s.notify(ctx, SaveEvent{Page: clonePage(updated), Converted: converted}); err != nil {
		return updated, err
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) notify(ctx context.Context, event SaveEvent) error {
	s.mu.RLock()
	observers := append([]SaveObserver(nil), s.observers...)
	s.mu.RUnlock()
	for _, observer := range observers {
		if err := observer.PageSaved(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func joinPath(parentPath, segment string) string {
	normalized, err := slug.Normalize(segment)
	if err != nil || normalized == "" {
		normalized = strings.Trim(strings.TrimSpace(segment), "/")
	}
	base := parentPath
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + normalized + "/"
}

func requireUUID(value any) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("pages.uuid_required", "must be a valid identifier")
	}
	return nil
}
