package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/soaringjerry/synap-reliability/internal/psychometrics"
)

// Hypothesis tests accepted by Inferential.
const (
	TestOneSample   = "t_one_sample"
	TestIndependent = "t_independent"
	TestANOVA       = "anova"
	TestCorrelation = "correlation"
	TestChiSquare   = "chi_square"
	TestRegression  = "regression"
)

// InferentialRequest names a test and the item columns it reads. Group is
// the grouping item for t_independent and anova; Second is the other item
// for correlation and chi_square, and the predictor for regression.
type InferentialRequest struct {
	Test           string   `json:"test"`
	Variable       string   `json:"variable"`
	Group          string   `json:"group,omitempty"`
	Second         string   `json:"second,omitempty"`
	Method         string   `json:"method,omitempty"`
	PopulationMean *float64 `json:"population_mean,omitempty"`
	Locale         string   `json:"-"`
}

// ExploreRequest configures the exploratory battery over Likert items.
type ExploreRequest struct {
	GroupBy       string `json:"group_by,omitempty"`
	OutlierMethod string `json:"outlier_method,omitempty"`
}

func (r InferentialRequest) validate(ds *psychometrics.Dataset) error {
	need := []string{r.Variable}
	switch r.Test {
	case TestOneSample:
		if r.PopulationMean == nil {
			return NewInvalidError("population_mean is required for t_one_sample")
		}
	case TestIndependent, TestANOVA:
		need = append(need, r.Group)
	case TestCorrelation, TestChiSquare, TestRegression:
		need = append(need, r.Second)
	default:
		return NewInvalidError(fmt.Sprintf("unknown test %q", r.Test))
	}
	for _, col := range need {
		if col == "" {
			return NewInvalidError(fmt.Sprintf("%s needs variable, group or second set", r.Test))
		}
		if !ds.Has(col) {
			return NewInvalidError(fmt.Sprintf("%q is not an item of this scale", col))
		}
	}
	return nil
}

// Inferential runs one hypothesis test over the scale's responses.
func (s *AnalysisService) Inferential(tenantID, scaleID string, req InferentialRequest) (psychometrics.MetricResult, error) {
	if _, err := ownedScale(s.store.GetScale, tenantID, scaleID); err != nil {
		return nil, err
	}
	ds, _, err := s.loadDataset(scaleID)
	if err != nil {
		return nil, err
	}
	if err := req.validate(ds); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := runTest(s.analyzer.WithLocale(req.Locale), ds, req)
	s.recorder.ObserveRun("inferential", time.Since(start), err)
	if err != nil {
		return nil, unprocessable(err)
	}
	s.logger.Info("inferential test completed",
		zap.String("scale_id", scaleID),
		zap.String("test", req.Test),
		zap.Int("respondents", ds.Rows()))
	return res, nil
}

// Explore returns frequency, normality and outlier diagnostics for every
// Likert item of the scale, grouped by another item when requested.
func (s *AnalysisService) Explore(tenantID, scaleID, locale string, req ExploreRequest) (*psychometrics.ExploratoryReport, error) {
	if _, err := ownedScale(s.store.GetScale, tenantID, scaleID); err != nil {
		return nil, err
	}
	ds, items, err := s.loadDataset(scaleID)
	if err != nil {
		return nil, err
	}
	if req.GroupBy != "" && !ds.Has(req.GroupBy) {
		return nil, NewInvalidError(fmt.Sprintf("group_by %q is not an item of this scale", req.GroupBy))
	}
	switch req.OutlierMethod {
	case "", psychometrics.OutliersIQR, psychometrics.OutliersZScore:
	default:
		return nil, NewInvalidError(fmt.Sprintf("unknown outlier method %q", req.OutlierMethod))
	}
	start := time.Now()
	report, err := s.analyzer.WithLocale(locale).Explore(ds, itemIDs(items, true), psychometrics.ExploreOptions{
		GroupBy:       req.GroupBy,
		OutlierMethod: req.OutlierMethod,
	})
	s.recorder.ObserveRun("exploratory", time.Since(start), err)
	if err != nil {
		return nil, NewInvalidError(err.Error())
	}
	for _, o := range report.Omitted {
		s.recorder.ObserveOmission(string(o.Kind), o.Reason)
	}
	return report, nil
}

// runTest dispatches req to the engine; a failed test yields a nil result.
func runTest(a *psychometrics.Analyzer, ds *psychometrics.Dataset, req InferentialRequest) (psychometrics.MetricResult, error) {
	switch req.Test {
	case TestOneSample:
		res, err := a.OneSampleTTest(ds, req.Variable, *req.PopulationMean)
		if err != nil {
			return nil, err
		}
		return res, nil
	case TestIndependent:
		res, err := a.IndependentTTest(ds, req.Variable, req.Group)
		if err != nil {
			return nil, err
		}
		return res, nil
	case TestANOVA:
		res, err := a.OneWayANOVA(ds, req.Variable, req.Group)
		if err != nil {
			return nil, err
		}
		return res, nil
	case TestCorrelation:
		res, err := a.CorrelationTest(ds, req.Variable, req.Second, req.Method)
		if err != nil {
			return nil, err
		}
		return res, nil
	case TestChiSquare:
		res, err := a.ChiSquare(ds, req.Variable, req.Second)
		if err != nil {
			return nil, err
		}
		return res, nil
	case TestRegression:
		res, err := a.SimpleRegression(ds, req.Variable, req.Second)
		if err != nil {
			return nil, err
		}
		return res, nil
	default:
		return nil, NewInvalidError(fmt.Sprintf("unknown test %q", req.Test))
	}
}
