// Package psychometrics computes reliability and validity statistics for
// survey instruments: Cronbach's alpha, split-half reliability, KMO,
// Bartlett's test of sphericity, content validity (IVC), and factorial,
// convergent, discriminant and criterion validity. It also offers the
// hypothesis tests and exploratory summaries used to read survey data:
// t-tests, ANOVA, correlation, chi-square, regression, frequencies,
// normality and outliers.
//
// The package is pure: it reads a Dataset, never writes to it, keeps no
// state between calls, and performs no I/O. Diagnostics go to the
// *zap.Logger handed to NewAnalyzer.
package psychometrics

import (
	"fmt"

	"go.uber.org/zap"
)

// Analyzer runs metrics under a fixed Config. It is safe for concurrent use.
type Analyzer struct {
	cfg    Config
	logger *zap.Logger
}

// NewAnalyzer validates cfg and returns an analyzer. A nil logger discards
// diagnostics.
func NewAnalyzer(cfg Config, logger *zap.Logger) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analyzer config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{cfg: cfg, logger: logger}, nil
}

// Config returns the analyzer's policy.
func (a *Analyzer) Config() Config { return a.cfg }

// WithLocale returns a copy of the analyzer that renders labels in locale.
func (a *Analyzer) WithLocale(locale string) *Analyzer {
	if locale == "" || locale == a.cfg.Locale {
		return a
	}
	cp := *a
	cp.cfg.Locale = locale
	return &cp
}

func (a *Analyzer) computed(kind MetricKind, value float64, fields ...zap.Field) {
	a.logger.Debug("metric computed",
		append([]zap.Field{zap.String("metric", string(kind)), zap.Float64("value", value)}, fields...)...)
}

// QuickAlpha returns only the alpha coefficient for items.
func QuickAlpha(ds *Dataset, items []string) (float64, error) {
	a := &Analyzer{cfg: DefaultConfig(), logger: zap.NewNop()}
	res, err := a.CronbachAlpha(ds, items)
	if err != nil {
		return 0, err
	}
	return res.Alpha, nil
}
