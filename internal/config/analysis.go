package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/synap-reliability/internal/psychometrics"
)

// LoadAnalysis reads the analyzer policy from a YAML file. Fields absent from
// the file keep their psychometrics.DefaultConfig values. An empty path
// returns the defaults.
func LoadAnalysis(path string) (psychometrics.Config, error) {
	if path == "" {
		return psychometrics.DefaultConfig(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return psychometrics.Config{}, fmt.Errorf("read analysis config: %w", err)
	}
	cfg, err := ParseAnalysis(raw)
	if err != nil {
		return psychometrics.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// JudgeRatingMax is the highest judge score accepted on submission. It is
// the same ceiling IVC is computed against.
func JudgeRatingMax(cfg psychometrics.Config) int {
	return int(math.Floor(cfg.RatingScaleMax))
}

func ParseAnalysis(raw []byte) (psychometrics.Config, error) {
	cfg := psychometrics.DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return psychometrics.Config{}, fmt.Errorf("decode analysis config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return psychometrics.Config{}, fmt.Errorf("invalid analysis config: %w", err)
	}
	return cfg, nil
}
