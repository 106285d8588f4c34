package services

import (
	"fmt"
	"strings"
	"time"
)

type ScaleStore interface {
	InsertScale(sc *Scale) error
	GetScale(id string) (*Scale, error)
	InsertItem(it *Item) error
	ListItems(scaleID string) ([]*Item, error)
	ReplaceDimensions(scaleID string, dims []Dimension) error
	ListDimensions(scaleID string) ([]Dimension, error)
}

type ScaleService struct {
	store ScaleStore
	now   func() time.Time
	idGen func(n int) string
}

type ScaleItemView struct {
	ID            string `json:"id"`
	ReverseScored bool   `json:"reverse_scored"`
	Stem          string `json:"stem"`
	Type          string `json:"type"`
}

func NewScaleService(store ScaleStore) *ScaleService {
	return &ScaleService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: shortID,
	}
}

func (s *ScaleService) CreateScale(tenantID string, sc Scale) (*Scale, error) {
	if tenantID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	if sc.Points == 0 {
		sc.Points = 5
	}
	if sc.Points < 2 || sc.Points > 11 {
		return nil, NewInvalidError("points must be between 2 and 11")
	}
	if sc.ID == "" {
		sc.ID = s.idGen(8)
	} else if existing, err := s.store.GetScale(sc.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, NewConflictError("scale exists")
	}
	sc.TenantID = tenantID
	sc.CreatedAt = s.now()
	if err := s.store.InsertScale(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *ScaleService) AddItem(tenantID, scaleID string, item Item) (*Item, error) {
	if _, err := s.ownedScale(tenantID, scaleID); err != nil {
		return nil, err
	}
	if len(item.StemI18n) == 0 {
		return nil, NewInvalidError("stem_i18n required")
	}
	switch item.Type {
	case "", ItemLikert:
		item.Type = ItemLikert
	case ItemNumeric:
		if item.ReverseScored {
			return nil, NewInvalidError("numeric items cannot be reverse scored")
		}
	default:
		return nil, NewInvalidError(fmt.Sprintf("unsupported item type %q", item.Type))
	}
	existing, err := s.store.ListItems(scaleID)
	if err != nil {
		return nil, err
	}
	if item.ID == "" {
		item.ID = s.idGen(8)
	}
	for _, it := range existing {
		if it.ID == item.ID {
			return nil, NewConflictError("item exists")
		}
	}
	item.ScaleID = scaleID
	item.Position = len(existing)
	if err := s.store.InsertItem(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems renders item stems in lang, falling back to es and then en.
func (s *ScaleService) ListItems(scaleID, lang string) ([]ScaleItemView, error) {
	sc, err := s.store.GetScale(scaleID)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, NewNotFoundError("scale not found")
	}
	items, err := s.store.ListItems(scaleID)
	if err != nil {
		return nil, err
	}
	out := make([]ScaleItemView, 0, len(items))
	for _, it := range items {
		stem := it.StemI18n[lang]
		if stem == "" {
			stem = it.StemI18n["es"]
		}
		if stem == "" {
			stem = it.StemI18n["en"]
		}
		typ := it.Type
		if typ == "" {
			typ = ItemLikert
		}
		out = append(out, ScaleItemView{ID: it.ID, ReverseScored: it.ReverseScored, Stem: stem, Type: typ})
	}
	return out, nil
}

// SetDimensions replaces the scale's dimensions. Every referenced item must
// be a Likert item of the scale; names must be unique and non-empty.
func (s *ScaleService) SetDimensions(tenantID, scaleID string, dims []Dimension) ([]Dimension, error) {
	if _, err := s.ownedScale(tenantID, scaleID); err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(scaleID)
	if err != nil {
		return nil, err
	}
	likert := make(map[string]bool, len(items))
	for _, it := range items {
		likert[it.ID] = it.IsLikert()
	}
	names := map[string]struct{}{}
	clean := make([]Dimension, 0, len(dims))
	for _, d := range dims {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, NewInvalidError("dimension name required")
		}
		if _, dup := names[name]; dup {
			return nil, NewInvalidError(fmt.Sprintf("duplicate dimension %q", name))
		}
		names[name] = struct{}{}
		if len(d.ItemIDs) == 0 {
			return nil, NewInvalidError(fmt.Sprintf("dimension %q has no items", name))
		}
		seen := map[string]struct{}{}
		for _, id := range d.ItemIDs {
			isLikert, ok := likert[id]
			if !ok {
				return nil, NewInvalidError(fmt.Sprintf("dimension %q: unknown item %q", name, id))
			}
			if !isLikert {
				return nil, NewInvalidError(fmt.Sprintf("dimension %q: item %q is not a likert item", name, id))
			}
			if _, dup := seen[id]; dup {
				return nil, NewInvalidError(fmt.Sprintf("dimension %q: item %q listed twice", name, id))
			}
			seen[id] = struct{}{}
		}
		clean = append(clean, Dimension{Name: name, ItemIDs: append([]string(nil), d.ItemIDs...)})
	}
	if err := s.store.ReplaceDimensions(scaleID, clean); err != nil {
		return nil, err
	}
	return clean, nil
}

func (s *ScaleService) ownedScale(tenantID, scaleID string) (*Scale, error) {
	return ownedScale(s.store.GetScale, tenantID, scaleID)
}

// ownedScale loads a scale and checks it belongs to tenantID.
func ownedScale(get func(string) (*Scale, error), tenantID, scaleID string) (*Scale, error) {
	if tenantID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	sc, err := get(scaleID)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, NewNotFoundError("scale not found")
	}
	if sc.TenantID != tenantID {
		return nil, NewForbiddenError("forbidden")
	}
	return sc, nil
}
