package pages

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is an app screen whose body is a stored layout document. Slug and
// Language together identify it.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID         uuid.UUID `bun:",pk,type:uuid"                                json:"id"`
	Title      string    `bun:"title"                                         json:"title"`
	Slug       string    `bun:"slug,notnull,unique:pages_slug_language"       json:"slug"`
	Language   string    `bun:"language,notnull,unique:pages_slug_language"   json:"language"`
	LayoutJSON string    `bun:"layout_json,notnull"                           json:"layout_json"`
	IsActive   bool      `bun:"is_active,notnull,default:true"                json:"is_active"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// RenderedPage is a page with every bound row resolved to items.
type RenderedPage struct {
	Slug     string `json:"slug"`
	Language string `json:"language"`
	Title    string `json:"title"`
	Rows     []any  `json:"rows"`
}

// LayoutText is layout_json as submitted by admins. It accepts either a
// JSON string holding the document or the document itself.
type LayoutText string

func (l *LayoutText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*l = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*l = LayoutText(text)
		return nil
	}
	*l = LayoutText(trimmed)
	return nil
}

func clonePage(p *Page) *Page {
	if p == nil {
		return nil
	}
	cloned := *p
	return &cloned
}
