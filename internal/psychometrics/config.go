package psychometrics

import "fmt"

// Config holds the interpretive policy of the analyzer.
type Config struct {
	// Significance is the alpha level for Bartlett and criterion decisions.
	Significance float64 `json:"significance" yaml:"significance"`
	// Locale selects the language of interpretation labels ("es", "en").
	Locale string `json:"locale" yaml:"locale"`

	Reliability Thresholds `json:"reliability" yaml:"reliability"`
	KMO         Thresholds `json:"kmo" yaml:"kmo"`

	// A judge rating >= RelevanceThreshold counts as relevant for IVC.
	RelevanceThreshold float64 `json:"relevance_threshold" yaml:"relevance_threshold"`
	RatingScaleMax     float64 `json:"rating_scale_max" yaml:"rating_scale_max"`

	MaxFactorIterations int     `json:"max_factor_iterations" yaml:"max_factor_iterations"`
	FactorTolerance     float64 `json:"factor_tolerance" yaml:"factor_tolerance"`
}

// DefaultConfig returns the policy used by the thesis instrument.
func DefaultConfig() Config {
	return Config{
		Significance:        0.05,
		Locale:              "es",
		Reliability:         DefaultReliabilityThresholds(),
		KMO:                 DefaultKMOThresholds(),
		RelevanceThreshold:  3,
		RatingScaleMax:      4,
		MaxFactorIterations: 100,
		FactorTolerance:     1e-6,
	}
}

// Validate rejects settings the metrics cannot work with.
func (c Config) Validate() error {
	if c.Significance <= 0 || c.Significance >= 1 {
		return fmt.Errorf("significance must be in (0,1), got %v", c.Significance)
	}
	if c.RatingScaleMax < 1 {
		return fmt.Errorf("rating scale max must be >= 1, got %v", c.RatingScaleMax)
	}
	if c.RelevanceThreshold < 1 || c.RelevanceThreshold > c.RatingScaleMax {
		return fmt.Errorf("relevance threshold %v outside 1..%v", c.RelevanceThreshold, c.RatingScaleMax)
	}
	if c.MaxFactorIterations < 1 {
		return fmt.Errorf("max factor iterations must be positive")
	}
	if c.FactorTolerance <= 0 {
		return fmt.Errorf("factor tolerance must be positive")
	}
	if err := c.Reliability.validate("reliability"); err != nil {
		return err
	}
	return c.KMO.validate("kmo")
}
