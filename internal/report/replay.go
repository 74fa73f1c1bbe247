package report

import "github.com/Aman-CERP/readyctl/internal/preflight"

// Replay feeds a finished outcome back through an observer as if it were
// running, so stored runs print exactly like live ones. Results are
// grouped by category in first-seen order; titles maps IDs to display
// names and falls back to the ID.
func Replay(o preflight.Observer, out preflight.Outcome, titles map[preflight.CategoryID]string) {
	var order []preflight.CategoryID
	byCategory := make(map[preflight.CategoryID][]preflight.CheckResult)
	for _, r := range out.Results {
		if _, ok := byCategory[r.Category]; !ok {
			order = append(order, r.Category)
		}
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	for _, id := range order {
		title := titles[id]
		if title == "" {
			title = string(id)
		}
		c := preflight.Category{ID: id, Title: title}
		results := byCategory[id]

		o.OnCategoryStart(c)
		worst := preflight.SeverityPass
		for _, r := range results {
			o.OnProbeResult(r)
			worst = preflight.Worst(worst, r.Severity)
		}
		o.OnCategoryEnd(c, preflight.Summarize(results), worst)
	}
	o.OnSummary(out)
}
