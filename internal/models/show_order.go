package models

import (
	"encoding/json"
	"time"
)

// ShowOrder remembers the last shuffled show order for a channel so that a
// rebuild can avoid repeating the identical sequence. Paths is a JSON array
// of show file paths in play order.
type ShowOrder struct {
	Channel   string    `json:"channel" gorm:"type:text;primaryKey;column:channel"`
	Paths     string    `json:"paths" gorm:"type:text;not null;column:paths"`
	UpdatedAt time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewShowOrder creates a ShowOrder row from an ordered list of show paths
func NewShowOrder(channel string, order []string) (*ShowOrder, error) {
	encoded, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}
	return &ShowOrder{
		Channel:   channel,
		Paths:     string(encoded),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Order decodes the stored path list. A corrupt record decodes to nil,
// which callers treat as "no prior order".
func (o *ShowOrder) Order() []string {
	var order []string
	if err := json.Unmarshal([]byte(o.Paths), &order); err != nil {
		return nil
	}
	return order
}
