package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ResponseStore abstracts persistence operations required by ResponseService.
type ResponseStore interface {
	GetScale(id string) (*Scale, error)
	ListItems(scaleID string) ([]*Item, error)
	AddParticipant(p *Participant) error
	AddResponses(rs []*Response) error
	UpsertRatings(rs []*Rating) error
}

// Answer is one submitted value. Value is nil for a skipped item.
type Answer struct {
	ItemID string `json:"item_id"`
	Value  *int   `json:"raw_value"`
}

// BulkResponsesRequest transports the decoded handler input into the service layer.
type BulkResponsesRequest struct {
	ScaleID          string
	ParticipantEmail string
	Answers          []Answer
}

// BulkResponsesResult collects the data needed to emit the HTTP response.
type BulkResponsesResult struct {
	ParticipantID  string `json:"participant_id"`
	ResponsesCount int    `json:"count"`
	Skipped        int    `json:"skipped"`
}

// JudgeRating is one judge's score for one item.
type JudgeRating struct {
	ItemID string `json:"item_id"`
	Score  int    `json:"score"`
}

var ErrScaleNotFound = errors.New("scale not found")

// ResponseService hosts the submission workflows: participant answers and
// expert judge ratings.
type ResponseService struct {
	store       ResponseStore
	now         func() time.Time
	idGenerator func() string
	ratingMax   int
}

// NewResponseService constructs a service bound to the provided persistence
// interface. ratingMax bounds judge scores (1..ratingMax).
func NewResponseService(store ResponseStore, ratingMax int) *ResponseService {
	if ratingMax < 1 {
		ratingMax = 4
	}
	return &ResponseService{
		store:       store,
		now:         func() time.Time { return time.Now().UTC() },
		idGenerator: func() string { return shortID(12) },
		ratingMax:   ratingMax,
	}
}

// ReverseScore maps a raw Likert value onto the opposite end of a scale
// with the given number of points. Out-of-range values are clamped first.
func ReverseScore(raw, points int) int {
	if points < 2 {
		return raw
	}
	if raw < 1 {
		raw = 1
	}
	if raw > points {
		raw = points
	}
	return (points + 1) - raw
}

// Submit stores one participant's answers. Answers to unknown items, skipped
// answers and Likert values outside 1..points are dropped and counted in
// Skipped.
func (s *ResponseService) Submit(req BulkResponsesRequest) (*BulkResponsesResult, error) {
	if s.store == nil {
		return nil, errors.New("response service store is nil")
	}
	scale, err := s.store.GetScale(req.ScaleID)
	if err != nil {
		return nil, err
	}
	if scale == nil {
		return nil, ErrScaleNotFound
	}
	if len(req.Answers) == 0 {
		return nil, NewInvalidError("answers required")
	}
	items, err := s.store.ListItems(scale.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	submittedAt := s.now()
	participant := &Participant{
		ID:        s.idGenerator(),
		ScaleID:   scale.ID,
		Email:     strings.TrimSpace(req.ParticipantEmail),
		CreatedAt: submittedAt,
	}

	responses := make([]*Response, 0, len(req.Answers))
	answered := map[string]struct{}{}
	skipped := 0
	for _, ans := range req.Answers {
		item := byID[ans.ItemID]
		if item == nil || ans.Value == nil {
			skipped++
			continue
		}
		if _, dup := answered[item.ID]; dup {
			skipped++
			continue
		}
		raw := *ans.Value
		score := raw
		if item.IsLikert() {
			if raw < 1 || raw > scale.Points {
				skipped++
				continue
			}
			if item.ReverseScored {
				score = ReverseScore(raw, scale.Points)
			}
		}
		answered[item.ID] = struct{}{}
		responses = append(responses, &Response{
			ParticipantID: participant.ID,
			ItemID:        item.ID,
			RawValue:      raw,
			ScoreValue:    score,
			SubmittedAt:   submittedAt,
		})
	}
	if len(responses) == 0 {
		return nil, NewInvalidError("no valid answers")
	}

	if err := s.store.AddParticipant(participant); err != nil {
		return nil, err
	}
	if err := s.store.AddResponses(responses); err != nil {
		return nil, err
	}
	return &BulkResponsesResult{
		ParticipantID:  participant.ID,
		ResponsesCount: len(responses),
		Skipped:        skipped,
	}, nil
}

// SubmitRatings records a judge's relevance scores for a scale owned by
// tenantID. A judge rating the same item again replaces the earlier score.
func (s *ResponseService) SubmitRatings(tenantID, scaleID, judge string, ratings []JudgeRating) (int, error) {
	if _, err := ownedScale(s.store.GetScale, tenantID, scaleID); err != nil {
		return 0, err
	}
	judge = strings.TrimSpace(judge)
	if judge == "" {
		return 0, NewInvalidError("judge required")
	}
	if len(ratings) == 0 {
		return 0, NewInvalidError("ratings required")
	}
	items, err := s.store.ListItems(scaleID)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(items))
	for _, it := range items {
		known[it.ID] = true
	}
	now := s.now()
	out := make([]*Rating, 0, len(ratings))
	for _, r := range ratings {
		if !known[r.ItemID] {
			return 0, NewInvalidError(fmt.Sprintf("unknown item %q", r.ItemID))
		}
		if r.Score < 1 || r.Score > s.ratingMax {
			return 0, NewInvalidError(fmt.Sprintf("item %q: score must be between 1 and %d", r.ItemID, s.ratingMax))
		}
		out = append(out, &Rating{ScaleID: scaleID, ItemID: r.ItemID, Judge: judge, Score: r.Score, SubmittedAt: now})
	}
	if err := s.store.UpsertRatings(out); err != nil {
		return 0, err
	}
	return len(out), nil
}
