package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceHistoryCapacity is the number of price changes kept per product.
const PriceHistoryCapacity = 5

// PriceChange is one logged price mutation.
type PriceChange struct {
	Old decimal.Decimal `json:"old"`
	New decimal.Decimal `json:"new"`
	At  time.Time       `json:"ts"`
}

// PriceHistory is a fixed-capacity FIFO of a product's most recent price
// changes. Pushing onto a full history evicts the oldest entry; Pop removes
// the newest. It is persisted as a JSON array ordered oldest to newest.
type PriceHistory struct {
	buf   [PriceHistoryCapacity]PriceChange
	start int
	n     int
}

// NewPriceHistory builds a history from entries ordered oldest to newest.
// Only the last PriceHistoryCapacity entries are retained.
func NewPriceHistory(entries ...PriceChange) PriceHistory {
	var h PriceHistory
	for _, e := range entries {
		h.Push(e)
	}
	return h
}

// Len returns the number of entries held.
func (h PriceHistory) Len() int { return h.n }

// Push appends c as the newest entry, evicting the oldest when full.
func (h *PriceHistory) Push(c PriceChange) {
	if h.n < PriceHistoryCapacity {
		h.buf[(h.start+h.n)%PriceHistoryCapacity] = c
		h.n++
		return
	}
	h.buf[h.start] = c
	h.start = (h.start + 1) % PriceHistoryCapacity
}

// Pop removes and returns the newest entry.
func (h *PriceHistory) Pop() (PriceChange, bool) {
	if h.n == 0 {
		return PriceChange{}, false
	}
	idx := (h.start + h.n - 1) % PriceHistoryCapacity
	c := h.buf[idx]
	h.buf[idx] = PriceChange{}
	h.n--
	if h.n == 0 {
		h.start = 0
	}
	return c, true
}

// Last returns the newest entry without removing it.
func (h PriceHistory) Last() (PriceChange, bool) {
	if h.n == 0 {
		return PriceChange{}, false
	}
	return h.buf[(h.start+h.n-1)%PriceHistoryCapacity], true
}

// Entries returns a copy of the held entries ordered oldest to newest.
func (h PriceHistory) Entries() []PriceChange {
	out := make([]PriceChange, 0, h.n)
	for i := 0; i < h.n; i++ {
		out = append(out, h.buf[(h.start+i)%PriceHistoryCapacity])
	}
	return out
}

func (h PriceHistory) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Entries())
}

func (h *PriceHistory) UnmarshalJSON(data []byte) error {
	var entries []PriceChange
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*h = NewPriceHistory(entries...)
	return nil
}

// Value implements driver.Valuer for the jsonb column.
func (h PriceHistory) Value() (driver.Value, error) {
	b, err := h.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for the jsonb column. NULL reads as empty.
func (h *PriceHistory) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*h = PriceHistory{}
		return nil
	case []byte:
		if len(v) == 0 {
			*h = PriceHistory{}
			return nil
		}
		return h.UnmarshalJSON(v)
	case string:
		if v == "" {
			*h = PriceHistory{}
			return nil
		}
		return h.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("price history: unsupported scan type %T", src)
	}
}
