package psychometrics

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// AnalyzeOptions controls the composition.
type AnalyzeOptions struct {
	// IncludeValidity adds factorial, convergent, discriminant and criterion
	// validity to the report.
	IncludeValidity bool
	// Criterion names an external column for criterion validity. It is only
	// used when the dataset has it.
	Criterion string
	// Factors fixes the factor count for factorial validity; 0 derives it.
	Factors int
}

// Analyze runs the full battery over dims and the instrument as a whole.
// Individual metric failures are recorded in the report's Omitted list and
// never abort the run. Only a nil dataset or an unusable dimension list is
// returned as an error.
func (a *Analyzer) Analyze(ds *Dataset, dims []Dimension, opts AnalyzeOptions) (*AnalysisReport, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if err := validateDimensions(dims); err != nil {
		return nil, err
	}
	a.logger.Info("reliability analysis started",
		zap.Int("dimensions", len(dims)),
		zap.Int("respondents", ds.Rows()),
		zap.Bool("validity", opts.IncludeValidity))

	run := &composition{a: a, ds: ds}
	report := &AnalysisReport{
		ByDimension:    make(map[string]ReliabilitySet, len(dims)),
		DimensionOrder: make([]string, 0, len(dims)),
		Omitted:        []Omission{},
	}
	for _, d := range dims {
		report.ByDimension[d.Name] = run.reliability("dimension:"+d.Name, d.Items, len(d.Items) >= 3)
		report.DimensionOrder = append(report.DimensionOrder, d.Name)
	}

	all := unionItems(dims)
	report.General = run.reliability("general", all, true)

	if opts.IncludeValidity {
		report.Validity = run.validity(dims, all, opts)
	}
	report.Omitted = run.omitted
	if report.Omitted == nil {
		report.Omitted = []Omission{}
	}

	a.logger.Info("reliability analysis completed",
		zap.Int("dimensions", len(dims)),
		zap.Int("items", len(all)),
		zap.Int("omitted", len(report.Omitted)))
	return report, nil
}

// AnalyzeReliability is Analyze without the validity block.
func (a *Analyzer) AnalyzeReliability(ds *Dataset, dims []Dimension) (*AnalysisReport, error) {
	return a.Analyze(ds, dims, AnalyzeOptions{})
}

type composition struct {
	a       *Analyzer
	ds      *Dataset
	omitted []Omission
}

// keep reports whether err is nil; otherwise it records the omission.
func (c *composition) keep(scope string, kind MetricKind, err error) bool {
	if err == nil {
		return true
	}
	c.omitted = append(c.omitted, Omission{
		Scope:   scope,
		Kind:    kind,
		Reason:  ErrorKind(err),
		Message: err.Error(),
	})
	c.a.logger.Warn("metric omitted",
		zap.String("scope", scope),
		zap.String("metric", string(kind)),
		zap.Error(err))
	return false
}

func (c *composition) reliability(scope string, items []string, adequacy bool) ReliabilitySet {
	set := ReliabilitySet{Items: append([]string(nil), items...)}
	if res, err := c.a.CronbachAlpha(c.ds, items); c.keep(scope, KindAlpha, err) {
		set.Alpha = res
	}
	if res, err := c.a.SplitHalf(c.ds, items); c.keep(scope, KindSplitHalf, err) {
		set.SplitHalf = res
	}
	if !adequacy {
		return set
	}
	if res, err := c.a.KMO(c.ds, items); c.keep(scope, KindKMO, err) {
		set.KMO = res
	}
	if res, err := c.a.Bartlett(c.ds, items); c.keep(scope, KindBartlett, err) {
		set.Bartlett = res
	}
	return set
}

func (c *composition) validity(dims []Dimension, all []string, opts AnalyzeOptions) *ValiditySet {
	v := &ValiditySet{
		Factorial:  map[string]*FactorialResult{},
		Convergent: map[string]*ConvergentResult{},
	}
	for _, d := range dims {
		if len(d.Items) < 3 {
			continue
		}
		if res, err := c.a.Factorial(c.ds, d.Items, opts.Factors); c.keep("validity:"+d.Name, KindFactorial, err) {
			v.Factorial[d.Name] = res
		}
	}
	for _, d := range dims {
		if len(d.Items) < 2 {
			continue
		}
		if res, err := c.a.Convergent(c.ds, d.Items); c.keep("validity:"+d.Name, KindConvergent, err) {
			v.Convergent[d.Name] = res
		}
	}
	// Only the first two dimensions are compared.
	if len(dims) >= 2 {
		first, second := dims[0], dims[1]
		scope := "validity:" + first.Name + "|" + second.Name
		if res, err := c.a.Discriminant(c.ds, first.Items, second.Items); c.keep(scope, KindDiscriminant, err) {
			res.FirstDimension = first.Name
			res.SecondDimension = second.Name
			v.Discriminant = res
		}
	}
	if opts.Criterion != "" && c.ds.Has(opts.Criterion) {
		if res, err := c.a.Criterion(c.ds, all, opts.Criterion); c.keep("validity:criterion", KindCriterion, err) {
			v.Criterion = res
		}
	}
	return v
}

func validateDimensions(dims []Dimension) error {
	if len(dims) == 0 {
		return ErrNoDimensions
	}
	seen := make(map[string]struct{}, len(dims))
	for i, d := range dims {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("%w: dimension %d has no name", ErrInvalidDimension, i)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("%w: duplicate dimension %q", ErrInvalidDimension, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}

// unionItems concatenates the dimensions' items, keeping the first
// occurrence of an item shared by several dimensions.
func unionItems(dims []Dimension) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, d := range dims {
		for _, it := range d.Items {
			if _, ok := seen[it]; ok {
				continue
			}
			seen[it] = struct{}{}
			out = append(out, it)
		}
	}
	return out
}
