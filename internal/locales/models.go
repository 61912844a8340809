package locales

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Locale represents a content language tree root.
type Locale struct {
	bun.BaseModel `bun:"table:locales,alias:l"`

	ID        uuid.UUID `bun:",pk,type:uuid"                                  json:"id"`
	Code      string    `bun:"code,notnull,unique"                            json:"code"`
	Display   string    `bun:"display_name,notnull"                           json:"display_name"`
	IsActive  bool      `bun:"is_active,notnull,default:true"                 json:"is_active"`
	IsDefault bool      `bun:"is_default,notnull,default:false"               json:"is_default"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// IDs collects the identifiers of the supplied locales, skipping nil entries.
func IDs(locales ...*Locale) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(locales))
	for _, loc := range locales {
		if loc == nil {
			continue
		}
		out = append(out, loc.ID)
	}
	return out
}

func cloneLocale(src *Locale) *Locale {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
