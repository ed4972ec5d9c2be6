package prices

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PriceItem is one gold or currency quote.
type PriceItem struct {
	bun.BaseModel `bun:"table:price_items,alias:pi"`

	ID         uuid.UUID `bun:",pk,type:uuid"                                json:"id"`
	Symbol     string    `bun:"symbol,notnull"                                json:"symbol"`
	Title      string    `bun:"title"                                         json:"title"`
	Buy        float64   `bun:"buy,notnull"                                   json:"buy"`
	Sell       float64   `bun:"sell,notnull"                                  json:"sell"`
	LastUpdate time.Time `bun:"last_update,nullzero"                          json:"last_update"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Feed is the upstream price document.
type Feed struct {
	Gold     []Quote `json:"gold"`
	Currency []Quote `json:"currency"`
}

// Quote is one upstream entry. Price may arrive as a number or a numeric
// string.
type Quote struct {
	Symbol   string    `json:"symbol"`
	Name     string    `json:"name"`
	Price    FlexFloat `json:"price"`
	TimeUnix int64     `json:"time_unix"`
}

// FlexFloat decodes a JSON number, or a string holding one with optional
// thousands separators.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = 0
		return nil
	}
	text := string(trimmed)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
		if text == "" {
			*f = 0
			return nil
		}
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("prices: invalid price %q: %w", text, err)
	}
	*f = FlexFloat(value)
	return nil
}
