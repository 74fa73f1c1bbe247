package preflight

// Summary is the pass/warn/fail tally of a set of results.
// It is always derived from results, never stored on its own.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

// Ready reports whether the tally allows deployment: no failures.
// Warnings never block.
func (s Summary) Ready() bool {
	return s.Failed == 0
}

// Summarize folds results into a Summary.
func Summarize(results []CheckResult) Summary {
	var s Summary
	for _, r := range results {
		s.Total++
		switch r.Severity {
		case SeverityPass:
			s.Passed++
		case SeverityWarn:
			s.Warned++
		default:
			s.Failed++
		}
	}
	return s
}

// Aggregator is the append-only log of results for one run.
// It is not safe for concurrent use; a run owns exactly one.
type Aggregator struct {
	results []CheckResult
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record appends a result.
func (a *Aggregator) Record(r CheckResult) {
	a.results = append(a.results, r)
}

// Results returns a copy of the recorded results in order.
func (a *Aggregator) Results() []CheckResult {
	out := make([]CheckResult, len(a.results))
	copy(out, a.results)
	return out
}

// Summary returns the global tally.
func (a *Aggregator) Summary() Summary {
	return Summarize(a.results)
}

// CategorySummary returns the tally for one category.
func (a *Aggregator) CategorySummary(id CategoryID) Summary {
	var matched []CheckResult
	for _, r := range a.results {
		if r.Category == id {
			matched = append(matched, r)
		}
	}
	return Summarize(matched)
}

// CategorySeverity returns the worst severity recorded for a category.
// ok is false when the category has no results.
func (a *Aggregator) CategorySeverity(id CategoryID) (worst Severity, ok bool) {
	for _, r := range a.results {
		if r.Category == id {
			worst = Worst(worst, r.Severity)
			ok = true
		}
	}
	return worst, ok
}
