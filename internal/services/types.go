package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item types accepted by a scale. An empty type is treated as likert.
const (
	ItemLikert  = "likert"
	ItemNumeric = "numeric"
)

type Scale struct {
	ID        string            `json:"id"`
	TenantID  string            `json:"tenant_id,omitempty"`
	Points    int               `json:"points"`
	NameI18n  map[string]string `json:"name_i18n,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type Item struct {
	ID            string            `json:"id"`
	ScaleID       string            `json:"scale_id"`
	ReverseScored bool              `json:"reverse_scored"`
	StemI18n      map[string]string `json:"stem_i18n"`
	Type          string            `json:"type,omitempty"`
	Position      int               `json:"position"`
}

// IsLikert reports whether the item is answered on the scale's Likert points.
func (it *Item) IsLikert() bool { return it.Type == "" || it.Type == ItemLikert }

// Dimension is a named, ordered group of item ids within a scale.
type Dimension struct {
	Name    string   `json:"name"`
	ItemIDs []string `json:"items"`
}

type Participant struct {
	ID        string
	ScaleID   string
	Email     string
	CreatedAt time.Time
}

type Response struct {
	ParticipantID string
	ItemID        string
	RawValue      int
	ScoreValue    int
	SubmittedAt   time.Time
}

// Rating is one expert judge's relevance score for an item.
type Rating struct {
	ScaleID     string
	ItemID      string
	Judge       string
	Score       int
	SubmittedAt time.Time
}

type Tenant struct {
	ID   string
	Name string
}

type User struct {
	ID        string
	Email     string
	PassHash  []byte
	TenantID  string
	CreatedAt time.Time
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
