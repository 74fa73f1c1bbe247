package preflight

// Observer receives run progress as it happens. Calls arrive from the
// Runner's goroutine in order; implementations should return quickly.
type Observer interface {
	// OnCategoryStart is called before the first probe of a category runs.
	OnCategoryStart(c Category)
	// OnProbeStart is called before a probe's measurement begins.
	OnProbeStart(p Probe)
	// OnProbeResult is called as soon as a probe's result is recorded.
	OnProbeResult(r CheckResult)
	// OnCategoryEnd is called after the last probe of a category with
	// the category tally and its worst severity.
	OnCategoryEnd(c Category, s Summary, worst Severity)
	// OnSummary is called once when the run finishes.
	OnSummary(o Outcome)
}

// NopObserver ignores every event. Embed it to implement only some methods.
type NopObserver struct{}

func (NopObserver) OnCategoryStart(Category)                  {}
func (NopObserver) OnProbeStart(Probe)                        {}
func (NopObserver) OnProbeResult(CheckResult)                 {}
func (NopObserver) OnCategoryEnd(Category, Summary, Severity) {}
func (NopObserver) OnSummary(Outcome)                         {}

// Observers fans events out to several observers in order.
func Observers(observers ...Observer) Observer {
	filtered := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

type multiObserver []Observer

func (m multiObserver) OnCategoryStart(c Category) {
	for _, o := range m {
		o.OnCategoryStart(c)
	}
}

func (m multiObserver) OnProbeStart(p Probe) {
	for _, o := range m {
		o.OnProbeStart(p)
	}
}

func (m multiObserver) OnProbeResult(r CheckResult) {
	for _, o := range m {
		o.OnProbeResult(r)
	}
}

func (m multiObserver) OnCategoryEnd(c Category, s Summary, worst Severity) {
	for _, o := range m {
		o.OnCategoryEnd(c, s, worst)
	}
}

func (m multiObserver) OnSummary(out Outcome) {
	for _, o := range m {
		o.OnSummary(out)
	}
}
