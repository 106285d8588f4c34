package psychometrics

// MetricKind names a metric in results, omissions and logs.
type MetricKind string

const (
	KindAlpha           MetricKind = "cronbach_alpha"
	KindSplitHalf       MetricKind = "split_half"
	KindKMO             MetricKind = "kmo"
	KindBartlett        MetricKind = "bartlett"
	KindContentValidity MetricKind = "content_validity"
	KindFactorial       MetricKind = "factorial"
	KindConvergent      MetricKind = "convergent"
	KindDiscriminant    MetricKind = "discriminant"
	KindCriterion       MetricKind = "criterion"
	KindOneSampleT      MetricKind = "t_test_one_sample"
	KindIndependentT    MetricKind = "t_test_independent"
	KindANOVA           MetricKind = "anova"
	KindCorrelation     MetricKind = "correlation_test"
	KindChiSquare       MetricKind = "chi_square"
	KindRegression      MetricKind = "simple_regression"
	KindFrequency       MetricKind = "frequency"
	KindGroupStats      MetricKind = "grouped_statistics"
	KindNormality       MetricKind = "normality"
	KindOutliers        MetricKind = "outliers"
)

// MetricResult is implemented by every per-metric record.
type MetricResult interface {
	Kind() MetricKind
}

// Dimension is a named, ordered group of items measuring one construct.
type Dimension struct {
	Name  string   `json:"name" yaml:"name"`
	Items []string `json:"items" yaml:"items"`
}

// ItemAnalysis holds the per-item diagnostics of an alpha computation.
// Nil fields are undefined for the data (zero variance, or too few items).
type ItemAnalysis struct {
	Item                 string   `json:"item"`
	ItemTotalCorrelation *float64 `json:"item_total_correlation"`
	AlphaIfDeleted       *float64 `json:"alpha_if_deleted"`
}

type AlphaResult struct {
	Alpha                    float64        `json:"alpha"`
	Interpretation           Interpretation `json:"interpretation"`
	NItems                   int            `json:"n_items"`
	NObservations            int            `json:"n_observations"`
	Items                    []string       `json:"items"`
	ItemAnalysis             []ItemAnalysis `json:"item_analysis"`
	MeanInterItemCorrelation *float64       `json:"mean_inter_item_correlation"`
}

func (*AlphaResult) Kind() MetricKind { return KindAlpha }

// ItemTotal returns the item-total correlation for item, if defined.
func (r *AlphaResult) ItemTotal(item string) (float64, bool) {
	for _, ia := range r.ItemAnalysis {
		if ia.Item == item && ia.ItemTotalCorrelation != nil {
			return *ia.ItemTotalCorrelation, true
		}
	}
	return 0, false
}

type SplitHalfResult struct {
	CorrelationHalves float64        `json:"correlation_halves"`
	SpearmanBrown     float64        `json:"spearman_brown_coefficient"`
	FirstHalf         []string       `json:"first_half_items"`
	SecondHalf        []string       `json:"second_half_items"`
	NObservations     int            `json:"n_observations"`
	Interpretation    Interpretation `json:"interpretation"`
}

func (*SplitHalfResult) Kind() MetricKind { return KindSplitHalf }

type ItemKMO struct {
	Item string  `json:"item"`
	KMO  float64 `json:"kmo"`
}

type KMOResult struct {
	KMO            float64        `json:"kmo_global"`
	Interpretation Interpretation `json:"interpretation"`
	PerItem        []ItemKMO      `json:"kmo_per_variable"`
	NVariables     int            `json:"n_variables"`
	NObservations  int            `json:"n_observations"`
}

func (*KMOResult) Kind() MetricKind { return KindKMO }

type BartlettResult struct {
	ChiSquare        float64        `json:"chi_square"`
	DegreesOfFreedom int            `json:"degrees_of_freedom"`
	PValue           float64        `json:"p_value"`
	Determinant      float64        `json:"determinant"`
	Suitable         bool           `json:"suitable_for_factor_analysis"`
	Significance     float64        `json:"significance"`
	Interpretation   Interpretation `json:"interpretation"`
	NVariables       int            `json:"n_variables"`
	NObservations    int            `json:"n_observations"`
}

func (*BartlettResult) Kind() MetricKind { return KindBartlett }

// RatingMatrix holds judge relevance ratings: Scores[i][j] is judge j's
// rating of item i. NaN marks a missing rating.
type RatingMatrix struct {
	Items  []string    `json:"items"`
	Judges []string    `json:"judges"`
	Scores [][]float64 `json:"scores"`
}

type ItemIVC struct {
	Item     string  `json:"item"`
	IVC      float64 `json:"ivc"`
	Relevant int     `json:"relevant"`
}

type ContentValidityResult struct {
	IVC                float64        `json:"ivc_total"`
	ByItem             []ItemIVC      `json:"ivc_by_item"`
	NJudges            int            `json:"n_judges"`
	NItems             int            `json:"n_items"`
	RelevanceThreshold float64        `json:"relevance_threshold"`
	Interpretation     Interpretation `json:"interpretation"`
}

func (*ContentValidityResult) Kind() MetricKind { return KindContentValidity }

// FactorialResult holds an exploratory factor solution. Loadings[i][f] is
// the loading of item i on factor f.
type FactorialResult struct {
	Items                  []string       `json:"items"`
	NFactors               int            `json:"n_factors"`
	Factors                []string       `json:"factors"`
	Loadings               [][]float64    `json:"factor_loadings"`
	Eigenvalues            []float64      `json:"eigenvalues"`
	Communalities          []float64      `json:"communalities"`
	SSLoadings             []float64      `json:"ss_loadings"`
	ExplainedVarianceRatio []float64      `json:"explained_variance_ratio"`
	TotalVarianceExplained float64        `json:"total_variance_explained"`
	ProportionOfVariance   []float64      `json:"proportion_of_variance"`
	CumulativeVariance     float64        `json:"cumulative_variance"`
	Iterations             int            `json:"iterations"`
	Converged              bool           `json:"converged"`
	NObservations          int            `json:"n_observations"`
	Interpretation         Interpretation `json:"interpretation"`
}

func (*FactorialResult) Kind() MetricKind { return KindFactorial }

type ConvergentResult struct {
	Items             []string       `json:"items"`
	MeanCorrelation   float64        `json:"mean_correlation"`
	MinCorrelation    float64        `json:"min_correlation"`
	MaxCorrelation    float64        `json:"max_correlation"`
	NCorrelations     int            `json:"n_correlations"`
	CorrelationMatrix [][]float64    `json:"correlation_matrix"`
	NObservations     int            `json:"n_observations"`
	Interpretation    Interpretation `json:"interpretation"`
}

func (*ConvergentResult) Kind() MetricKind { return KindConvergent }

type DiscriminantResult struct {
	FirstDimension  string         `json:"dimension1,omitempty"`
	SecondDimension string         `json:"dimension2,omitempty"`
	Correlation     float64        `json:"correlation_between_dimensions"`
	FirstItems      []string       `json:"dimension1_items"`
	SecondItems     []string       `json:"dimension2_items"`
	NObservations   int            `json:"n_observations"`
	Interpretation  Interpretation `json:"interpretation"`
}

func (*DiscriminantResult) Kind() MetricKind { return KindDiscriminant }

type CriterionResult struct {
	Criterion      string         `json:"criterion_variable"`
	Items          []string       `json:"items"`
	Correlation    float64        `json:"correlation_with_criterion"`
	TStatistic     float64        `json:"t_statistic"`
	PValue         float64        `json:"p_value"`
	Significant    bool           `json:"significant"`
	NObservations  int            `json:"n_observations"`
	Interpretation Interpretation `json:"interpretation"`
}

func (*CriterionResult) Kind() MetricKind { return KindCriterion }

// ReliabilitySet is the reliability block computed for one dimension or for
// the whole instrument. A nil field means the metric was not run or failed;
// failures are listed in AnalysisReport.Omitted.
type ReliabilitySet struct {
	Items     []string         `json:"items"`
	Alpha     *AlphaResult     `json:"cronbach_alpha,omitempty"`
	SplitHalf *SplitHalfResult `json:"split_half,omitempty"`
	KMO       *KMOResult       `json:"kmo,omitempty"`
	Bartlett  *BartlettResult  `json:"bartlett,omitempty"`
}

// Results lists the metrics present in the set.
func (s ReliabilitySet) Results() []MetricResult {
	var out []MetricResult
	if s.Alpha != nil {
		out = append(out, s.Alpha)
	}
	if s.SplitHalf != nil {
		out = append(out, s.SplitHalf)
	}
	if s.KMO != nil {
		out = append(out, s.KMO)
	}
	if s.Bartlett != nil {
		out = append(out, s.Bartlett)
	}
	return out
}

// ValiditySet groups the validity metrics of a composition run.
type ValiditySet struct {
	Factorial  map[string]*FactorialResult  `json:"factorial"`
	Convergent map[string]*ConvergentResult `json:"convergent"`
	// Discriminant compares only the first two dimensions.
	Discriminant *DiscriminantResult `json:"discriminant,omitempty"`
	Criterion    *CriterionResult    `json:"criterion,omitempty"`
}

// Omission records a metric that failed during composition.
type Omission struct {
	Scope   string     `json:"scope"`
	Kind    MetricKind `json:"kind"`
	Reason  string     `json:"reason"`
	Message string     `json:"message"`
}

// AnalysisReport is the root output of Analyze. It holds no timestamps or
// generated identifiers, so the same inputs produce an equal report.
type AnalysisReport struct {
	General        ReliabilitySet            `json:"general"`
	ByDimension    map[string]ReliabilitySet `json:"by_dimension"`
	DimensionOrder []string                  `json:"dimension_order"`
	Validity       *ValiditySet              `json:"validity,omitempty"`
	Omitted        []Omission                `json:"omitted"`
}
