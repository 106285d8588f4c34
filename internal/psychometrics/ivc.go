package psychometrics

import "go.uber.org/zap"

// ContentValidity computes the content validity index from judge ratings.
// A rating counts as relevant when it reaches Config.RelevanceThreshold;
// missing ratings never do.
func (a *Analyzer) ContentValidity(ratings RatingMatrix) (*ContentValidityResult, error) {
	if len(ratings.Items) == 0 {
		return nil, metricErr(KindContentValidity, ErrInsufficientItems, "no items rated")
	}
	if len(ratings.Judges) == 0 {
		return nil, metricErr(KindContentValidity, ErrNoData, "no judges")
	}
	if len(ratings.Scores) != len(ratings.Items) {
		return nil, metricErr(KindContentValidity, ErrNoData, "got %d rating rows for %d items", len(ratings.Scores), len(ratings.Items))
	}
	judges := float64(len(ratings.Judges))
	byItem := make([]ItemIVC, len(ratings.Items))
	values := make([]float64, len(ratings.Items))
	for i, item := range ratings.Items {
		row := ratings.Scores[i]
		if len(row) != len(ratings.Judges) {
			return nil, metricErr(KindContentValidity, ErrNoData, "item %q has %d ratings for %d judges", item, len(row), len(ratings.Judges))
		}
		relevant := 0
		for _, v := range row {
			if !IsMissing(v) && v >= a.cfg.RelevanceThreshold {
				relevant++
			}
		}
		values[i] = float64(relevant) / judges
		byItem[i] = ItemIVC{Item: item, IVC: values[i], Relevant: relevant}
	}
	total := mean(values)
	a.computed(KindContentValidity, total, zap.Int("items", len(values)), zap.Int("judges", len(ratings.Judges)))
	return &ContentValidityResult{
		IVC:                total,
		ByItem:             byItem,
		NJudges:            len(ratings.Judges),
		NItems:             len(ratings.Items),
		RelevanceThreshold: a.cfg.RelevanceThreshold,
		Interpretation:     a.interpret("ivc", ivcThresholds.Classify(total)),
	}, nil
}
