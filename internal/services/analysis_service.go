package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soaringjerry/synap-reliability/internal/psychometrics"
)

type AnalysisStore interface {
	GetScale(id string) (*Scale, error)
	ListItems(scaleID string) ([]*Item, error)
	ListResponsesByScale(scaleID string) ([]*Response, error)
	ListDimensions(scaleID string) ([]Dimension, error)
	ListRatings(scaleID string) ([]*Rating, error)
}

// AnalysisRecorder observes analysis outcomes.
type AnalysisRecorder interface {
	ObserveRun(kind string, elapsed time.Duration, err error)
	ObserveOmission(metric, reason string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(string, time.Duration, error) {}
func (nopRecorder) ObserveOmission(string, string)          {}

// DefaultDimension names the single dimension used when a scale has none
// configured.
const DefaultDimension = "all_items"

type AnalysisService struct {
	store    AnalysisStore
	analyzer *psychometrics.Analyzer
	recorder AnalysisRecorder
	logger   *zap.Logger
	now      func() time.Time
	idGen    func() string
}

type AnalyticsItem struct {
	ID        string            `json:"id"`
	StemI18n  map[string]string `json:"stem_i18n,omitempty"`
	Reverse   bool              `json:"reverse_scored"`
	Type      string            `json:"type"`
	Histogram []int             `json:"histogram,omitempty"`
	Total     int               `json:"total"`
}

type AnalyticsTimeseries struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AnalyticsSummary struct {
	ScaleID        string                          `json:"scale_id"`
	Points         int                             `json:"points"`
	TotalResponses int                             `json:"total_responses"`
	Participants   int                             `json:"participants"`
	Items          []AnalyticsItem                 `json:"items"`
	Timeseries     []AnalyticsTimeseries           `json:"timeseries"`
	Alpha          *float64                        `json:"alpha"`
	N              int                             `json:"n"`
	Descriptives   []psychometrics.ItemDescriptive `json:"descriptives"`
}

// AnalyzeRequest selects what an analysis run computes.
type AnalyzeRequest struct {
	IncludeValidity bool   `json:"include_validity"`
	Criterion       string `json:"criterion,omitempty"`
	Factors         int    `json:"factors,omitempty"`
	Locale          string `json:"-"`
}

// AnalysisRun is one reliability/validity report for a scale.
type AnalysisRun struct {
	ID          string                        `json:"id"`
	ScaleID     string                        `json:"scale_id"`
	GeneratedAt time.Time                     `json:"generated_at"`
	Respondents int                           `json:"respondents"`
	Locale      string                        `json:"locale"`
	Dimensions  []Dimension                   `json:"dimensions"`
	Report      *psychometrics.AnalysisReport `json:"report"`
}

// NewAnalysisService wires the engine to persisted responses. recorder and
// logger may be nil.
func NewAnalysisService(store AnalysisStore, analyzer *psychometrics.Analyzer, recorder AnalysisRecorder, logger *zap.Logger) *AnalysisService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		store:    store,
		analyzer: analyzer,
		recorder: recorder,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		idGen:    uuid.NewString,
	}
}

func (s *AnalysisService) Summary(tenantID, scaleID string) (*AnalyticsSummary, error) {
	sc, err := ownedScale(s.store.GetScale, tenantID, scaleID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(scaleID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponsesByScale(scaleID)
	if err != nil {
		return nil, err
	}
	points := sc.Points
	if points <= 0 {
		points = 5
	}
	analyticsItems, countsByDay := buildAnalyticsItems(items, responses, points)
	ds, _, err := buildDataset(items, responses)
	if err != nil {
		return nil, err
	}
	ids := itemIDs(items, false)
	descriptives, err := psychometrics.Describe(ds, ids)
	if err != nil {
		return nil, err
	}
	summary := &AnalyticsSummary{
		ScaleID:        scaleID,
		Points:         points,
		TotalResponses: len(responses),
		Participants:   ds.Rows(),
		Items:          analyticsItems,
		Timeseries:     buildTimeseries(countsByDay),
		Descriptives:   descriptives,
	}
	if res, err := s.analyzer.CronbachAlpha(ds, itemIDs(items, true)); err == nil {
		summary.Alpha = &res.Alpha
		summary.N = res.NObservations
	} else {
		s.logger.Debug("summary alpha unavailable", zap.String("scale_id", scaleID), zap.Error(err))
	}
	return summary, nil
}

// Alpha computes Cronbach's alpha over every Likert item of the scale.
func (s *AnalysisService) Alpha(tenantID, scaleID string) (*psychometrics.AlphaResult, error) {
	if _, err := ownedScale(s.store.GetScale, tenantID, scaleID); err != nil {
		return nil, err
	}
	ds, items, err := s.loadDataset(scaleID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := s.analyzer.CronbachAlpha(ds, itemIDs(items, true))
	s.recorder.ObserveRun("alpha", time.Since(start), err)
	if err != nil {
		return nil, unprocessable(err)
	}
	return res, nil
}

// Analyze runs the reliability battery, and validity when requested, over
// the scale's dimensions. Respondents are rows ordered by participant id;
// unanswered items are missing.
func (s *AnalysisService) Analyze(tenantID, scaleID string, req AnalyzeRequest) (*AnalysisRun, error) {
	if _, err := ownedScale(s.store.GetScale, tenantID, scaleID); err != nil {
		return nil, err
	}
	ds, items, err := s.loadDataset(scaleID)
	if err != nil {
		return nil, err
	}
	if req.Factors < 0 {
		return nil, NewInvalidError("factors must not be negative")
	}
	if req.Criterion != "" && !ds.Has(req.Criterion) {
		return nil, NewInvalidError(fmt.Sprintf("criterion %q is not an item of this scale", req.Criterion))
	}
	dims, err := s.store.ListDimensions(scaleID)
	if err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		likert := itemIDs(items, true)
		if len(likert) == 0 {
			return nil, NewInvalidError("scale has no likert items")
		}
		dims = []Dimension{{Name: DefaultDimension, ItemIDs: likert}}
	}
	engineDims := make([]psychometrics.Dimension, len(dims))
	for i, d := range dims {
		engineDims[i] = psychometrics.Dimension{Name: d.Name, Items: d.ItemIDs}
	}

	kind := "reliability"
	if req.IncludeValidity {
		kind = "full"
	}
	start := time.Now()
	report, err := s.analyzer.WithLocale(req.Locale).Analyze(ds, engineDims, psychometrics.AnalyzeOptions{
		IncludeValidity: req.IncludeValidity,
		Criterion:       req.Criterion,
		Factors:         req.Factors,
	})
	elapsed := time.Since(start)
	s.recorder.ObserveRun(kind, elapsed, err)
	if err != nil {
		return nil, NewInvalidError(err.Error())
	}
	for _, o := range report.Omitted {
		s.recorder.ObserveOmission(string(o.Kind), o.Reason)
	}
	run := &AnalysisRun{
		ID:          s.idGen(),
		ScaleID:     scaleID,
		GeneratedAt: s.now(),
		Respondents: ds.Rows(),
		Locale:      s.analyzer.WithLocale(req.Locale).Config().Locale,
		Dimensions:  dims,
		Report:      report,
	}
	s.logger.Info("analysis run completed",
		zap.String("run_id", run.ID),
		zap.String("scale_id", scaleID),
		zap.String("kind", kind),
		zap.Int("respondents", run.Respondents),
		zap.Int("omitted", len(report.Omitted)),
		zap.Duration("elapsed", elapsed))
	return run, nil
}

// ContentValidity computes the IVC of the scale's Likert items from stored
// judge ratings. Judges are ordered by name; an item a judge did not rate
// counts as not relevant for that judge.
func (s *AnalysisService) ContentValidity(tenantID, scaleID, locale string) (*psychometrics.ContentValidityResult, error) {
	if _, err := ownedScale(s.store.GetScale, tenantID, scaleID); err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(scaleID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.store.ListRatings(scaleID)
	if err != nil {
		return nil, err
	}
	matrix := buildRatingMatrix(itemIDs(items, true), ratings)
	start := time.Now()
	res, err := s.analyzer.WithLocale(locale).ContentValidity(matrix)
	s.recorder.ObserveRun("content_validity", time.Since(start), err)
	if err != nil {
		return nil, unprocessable(err)
	}
	return res, nil
}

func (s *AnalysisService) loadDataset(scaleID string) (*psychometrics.Dataset, []*Item, error) {
	items, err := s.store.ListItems(scaleID)
	if err != nil {
		return nil, nil, err
	}
	responses, err := s.store.ListResponsesByScale(scaleID)
	if err != nil {
		return nil, nil, err
	}
	ds, _, err := buildDataset(items, responses)
	if err != nil {
		return nil, nil, err
	}
	return ds, items, nil
}

func unprocessable(err error) error {
	return NewUnprocessableError(psychometrics.ErrorKind(err), err.Error())
}

// itemIDs lists item ids in scale order, optionally only Likert items.
func itemIDs(items []*Item, likertOnly bool) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if likertOnly && !it.IsLikert() {
			continue
		}
		out = append(out, it.ID)
	}
	return out
}

// buildDataset lays responses out as participants (sorted by id) by items
// (scale order). Responses to items outside the list are ignored.
func buildDataset(items []*Item, responses []*Response) (*psychometrics.Dataset, []string, error) {
	col := make(map[string]int, len(items))
	for i, it := range items {
		col[it.ID] = i
	}
	byParticipant := map[string]map[string]float64{}
	for _, resp := range responses {
		if _, ok := col[resp.ItemID]; !ok {
			continue
		}
		if byParticipant[resp.ParticipantID] == nil {
			byParticipant[resp.ParticipantID] = map[string]float64{}
		}
		byParticipant[resp.ParticipantID][resp.ItemID] = float64(resp.ScoreValue)
	}
	pids := make([]string, 0, len(byParticipant))
	for pid := range byParticipant {
		pids = append(pids, pid)
	}
	sort.Strings(pids)
	rows := make([][]float64, len(pids))
	for r, pid := range pids {
		row := make([]float64, len(items))
		for i := range row {
			row[i] = psychometrics.Missing
		}
		for itemID, v := range byParticipant[pid] {
			row[col[itemID]] = v
		}
		rows[r] = row
	}
	ds, err := psychometrics.NewDataset(itemIDs(items, false), rows)
	if err != nil {
		return nil, nil, fmt.Errorf("build dataset: %w", err)
	}
	return ds, pids, nil
}

func buildRatingMatrix(items []string, ratings []*Rating) psychometrics.RatingMatrix {
	row := make(map[string]int, len(items))
	for i, id := range items {
		row[id] = i
	}
	judgeSet := map[string]struct{}{}
	for _, r := range ratings {
		if _, ok := row[r.ItemID]; ok {
			judgeSet[r.Judge] = struct{}{}
		}
	}
	judges := make([]string, 0, len(judgeSet))
	for j := range judgeSet {
		judges = append(judges, j)
	}
	sort.Strings(judges)
	col := make(map[string]int, len(judges))
	for i, j := range judges {
		col[j] = i
	}
	scores := make([][]float64, len(items))
	for i := range scores {
		scores[i] = make([]float64, len(judges))
		for j := range scores[i] {
			scores[i][j] = psychometrics.Missing
		}
	}
	for _, r := range ratings {
		i, ok := row[r.ItemID]
		if !ok {
			continue
		}
		scores[i][col[r.Judge]] = float64(r.Score)
	}
	return psychometrics.RatingMatrix{Items: items, Judges: judges, Scores: scores}
}

func buildAnalyticsItems(items []*Item, responses []*Response, points int) ([]AnalyticsItem, map[string]int) {
	itemIndex := make(map[string]int)
	analyticsItems := make([]AnalyticsItem, 0, len(items))
	for i, it := range items {
		ai := AnalyticsItem{ID: it.ID, StemI18n: it.StemI18n, Reverse: it.ReverseScored, Type: ItemNumeric}
		if it.IsLikert() {
			ai.Type = ItemLikert
			ai.Histogram = make([]int, points)
		}
		analyticsItems = append(analyticsItems, ai)
		itemIndex[it.ID] = i
	}
	countsByDay := map[string]int{}
	for _, resp := range responses {
		if idx, ok := itemIndex[resp.ItemID]; ok {
			ai := &analyticsItems[idx]
			ai.Total++
			if v := resp.ScoreValue; ai.Histogram != nil && v >= 1 && v <= points {
				ai.Histogram[v-1]++
			}
		}
		day := resp.SubmittedAt.UTC().Format("2006-01-02")
		countsByDay[day]++
	}
	return analyticsItems, countsByDay
}

func buildTimeseries(counts map[string]int) []AnalyticsTimeseries {
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]AnalyticsTimeseries, 0, len(days))
	for _, d := range days {
		out = append(out, AnalyticsTimeseries{Date: d, Count: counts[d]})
	}
	return out
}
