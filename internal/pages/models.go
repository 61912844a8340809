package pages

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RootDepth is the depth of the platform's absolute root. Locale homepages
// live directly below it at HomepageDepth.
const (
	RootDepth     = 1
	HomepageDepth = 2
)

// Page is a single locale row of a logical page. Rows sharing a
// TranslationKey are locale variants of the same node.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID             uuid.UUID  `bun:",pk,type:uuid"                                         json:"id"`
	TranslationKey uuid.UUID  `bun:"translation_key,notnull,type:uuid,unique:page_key_locale" json:"translation_key"`
	LocaleID       uuid.UUID  `bun:"locale_id,notnull,type:uuid,unique:page_key_locale"       json:"locale_id"`
	ParentID       *uuid.UUID `bun:"parent_id,type:uuid"                                    json:"parent_id,omitempty"`
	AliasOfID      *uuid.UUID `bun:"alias_of_id,type:uuid"                                  json:"alias_of_id,omitempty"`
	ContentType    string     `bun:"content_type,notnull"                                   json:"content_type"`
	Title          string     `bun:"title,notnull"                                          json:"title"`
	Slug           string     `bun:"slug,notnull"                                           json:"slug"`
	Path           string     `bun:"path,notnull"                                           json:"path"`
	Depth          int        `bun:"depth,notnull"                                          json:"depth"`
	Live           bool       `bun:"live,notnull,default:false"                             json:"live"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,default:current_timestamp"          json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,nullzero,default:current_timestamp"          json:"updated_at"`
}

// IsAlias reports whether the row is a placeholder mirroring another row.
func (p *Page) IsAlias() bool {
	return p != nil && p.AliasOfID != nil && *p.AliasOfID != uuid.Nil
}

// IsRoot reports whether the row is the platform's absolute root.
func (p *Page) IsRoot() bool {
	return p != nil && p.Depth <= RootDepth
}

func clonePage(src *Page) *Page {
	if src == nil {
		return nil
	}
	copied := *src
	copied.ParentID = cloneUUIDPointer(src.ParentID)
	copied.AliasOfID = cloneUUIDPointer(src.AliasOfID)
	return &copied
}

func cloneUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
