package psychometrics

import (
	"fmt"
	"math"

	"github.com/soaringjerry/synap-reliability/internal/utils"
)

// Interpretation is a label drawn from an ordinal threshold table. Code is
// stable across locales; Label is rendered in the analyzer's locale.
type Interpretation struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Band is one row of a threshold table: values >= Min get Code.
type Band struct {
	Min  float64 `json:"min" yaml:"min"`
	Code string  `json:"code" yaml:"code"`
}

// Thresholds is an ordinal table checked top-down; the first band whose Min
// is reached wins, otherwise Fallback applies.
type Thresholds struct {
	Bands    []Band `json:"bands" yaml:"bands"`
	Fallback string `json:"fallback" yaml:"fallback"`
}

// Classify returns the code for v.
func (t Thresholds) Classify(v float64) string {
	for _, b := range t.Bands {
		if v >= b.Min {
			return b.Code
		}
	}
	return t.Fallback
}

func (t Thresholds) validate(name string) error {
	if t.Fallback == "" {
		return fmt.Errorf("%s thresholds: fallback code required", name)
	}
	prev := math.Inf(1)
	for i, b := range t.Bands {
		if b.Code == "" {
			return fmt.Errorf("%s thresholds: band %d has no code", name, i)
		}
		if b.Min > prev {
			return fmt.Errorf("%s thresholds: band %d (%.2f) is above the previous band", name, i, b.Min)
		}
		prev = b.Min
	}
	return nil
}

// DefaultReliabilityThresholds is the alpha/split-half table.
func DefaultReliabilityThresholds() Thresholds {
	return Thresholds{
		Bands: []Band{
			{Min: 0.90, Code: "excellent"},
			{Min: 0.80, Code: "good"},
			{Min: 0.70, Code: "acceptable"},
			{Min: 0.60, Code: "questionable"},
			{Min: 0.50, Code: "poor"},
		},
		Fallback: "unacceptable",
	}
}

// DefaultKMOThresholds is Kaiser's sampling adequacy table.
func DefaultKMOThresholds() Thresholds {
	return Thresholds{
		Bands: []Band{
			{Min: 0.90, Code: "marvelous"},
			{Min: 0.80, Code: "meritorious"},
			{Min: 0.70, Code: "middling"},
			{Min: 0.60, Code: "mediocre"},
			{Min: 0.50, Code: "miserable"},
		},
		Fallback: "unacceptable",
	}
}

var (
	ivcThresholds = Thresholds{
		Bands: []Band{
			{Min: 0.80, Code: "excellent"},
			{Min: 0.70, Code: "good"},
			{Min: 0.60, Code: "acceptable"},
		},
		Fallback: "insufficient",
	}
	convergentThresholds = Thresholds{
		Bands: []Band{
			{Min: 0.50, Code: "excellent"},
			{Min: 0.30, Code: "good"},
			{Min: 0.20, Code: "acceptable"},
		},
		Fallback: "insufficient",
	}
)

// discriminantCode grades |r|; lower is better.
func discriminantCode(r float64) string {
	a := math.Abs(r)
	switch {
	case a < 0.30:
		return "excellent"
	case a < 0.50:
		return "good"
	case a < 0.70:
		return "moderate"
	default:
		return "insufficient"
	}
}

// criterionCode combines magnitude and significance.
func criterionCode(r, p float64) string {
	a := math.Abs(r)
	switch {
	case a >= 0.50 && p < 0.01:
		return "excellent"
	case a >= 0.30 && p < 0.05:
		return "good"
	case p < 0.05:
		return "acceptable"
	default:
		return "insufficient"
	}
}

func (a *Analyzer) interpret(group, code string) Interpretation {
	return Interpretation{Code: code, Label: utils.T(a.cfg.Locale, group+"."+code)}
}
