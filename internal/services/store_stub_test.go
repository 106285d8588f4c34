package services

import (
	"errors"
	"sort"
)

// memStore is an in-memory implementation of every store interface used by
// the services.
type memStore struct {
	scales       map[string]*Scale
	items        map[string][]*Item
	dims         map[string][]Dimension
	participants []*Participant
	responses    []*Response
	ratings      []*Rating
	users        map[string]*User
	tenants      map[string]*Tenant
}

func newMemStore() *memStore {
	return &memStore{
		scales:  map[string]*Scale{},
		items:   map[string][]*Item{},
		dims:    map[string][]Dimension{},
		users:   map[string]*User{},
		tenants: map[string]*Tenant{},
	}
}

func (s *memStore) InsertScale(sc *Scale) error {
	copy := *sc
	s.scales[sc.ID] = &copy
	return nil
}

func (s *memStore) GetScale(id string) (*Scale, error) {
	if sc, ok := s.scales[id]; ok {
		copy := *sc
		return &copy, nil
	}
	return nil, nil
}

func (s *memStore) InsertItem(it *Item) error {
	copy := *it
	s.items[it.ScaleID] = append(s.items[it.ScaleID], &copy)
	return nil
}

func (s *memStore) ListItems(scaleID string) ([]*Item, error) {
	out := []*Item{}
	for _, it := range s.items[scaleID] {
		copy := *it
		out = append(out, &copy)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *memStore) ReplaceDimensions(scaleID string, dims []Dimension) error {
	s.dims[scaleID] = append([]Dimension(nil), dims...)
	return nil
}

func (s *memStore) ListDimensions(scaleID string) ([]Dimension, error) {
	return append([]Dimension(nil), s.dims[scaleID]...), nil
}

func (s *memStore) AddParticipant(p *Participant) error {
	copy := *p
	s.participants = append(s.participants, &copy)
	return nil
}

func (s *memStore) AddResponses(rs []*Response) error {
	for _, r := range rs {
		copy := *r
		s.responses = append(s.responses, &copy)
	}
	return nil
}

func (s *memStore) ListResponsesByScale(scaleID string) ([]*Response, error) {
	ids := map[string]bool{}
	for _, it := range s.items[scaleID] {
		ids[it.ID] = true
	}
	out := []*Response{}
	for _, r := range s.responses {
		if ids[r.ItemID] {
			copy := *r
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *memStore) UpsertRatings(rs []*Rating) error {
	for _, r := range rs {
		replaced := false
		for i, existing := range s.ratings {
			if existing.ScaleID == r.ScaleID && existing.ItemID == r.ItemID && existing.Judge == r.Judge {
				copy := *r
				s.ratings[i] = &copy
				replaced = true
			}
		}
		if !replaced {
			copy := *r
			s.ratings = append(s.ratings, &copy)
		}
	}
	return nil
}

func (s *memStore) ListRatings(scaleID string) ([]*Rating, error) {
	out := []*Rating{}
	for _, r := range s.ratings {
		if r.ScaleID == scaleID {
			copy := *r
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *memStore) FindUserByEmail(email string) (*User, error) {
	if u, ok := s.users[email]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (s *memStore) AddUser(u *User) error {
	if _, ok := s.users[u.Email]; ok {
		return errors.New("duplicate user")
	}
	copy := *u
	s.users[u.Email] = &copy
	return nil
}

func (s *memStore) AddTenant(t *Tenant) error {
	copy := *t
	s.tenants[t.ID] = &copy
	return nil
}
