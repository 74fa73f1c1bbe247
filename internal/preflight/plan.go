package preflight

import (
	"fmt"
	"strings"
)

// Category is an ordered group of probes.
// A FailFast category halts the run when any of its probes fails.
type Category struct {
	ID       CategoryID
	Title    string
	FailFast bool
	Probes   []Probe
}

// Plan is the ordered sequence of categories executed by a Runner.
// A Plan is read-only once constructed.
type Plan struct {
	categories []Category
}

// NewPlan validates categories and returns a Plan.
// Each probe's Category is set to the category that contains it.
func NewPlan(categories ...Category) (*Plan, error) {
	seenCategories := make(map[CategoryID]bool, len(categories))
	seenProbes := make(map[string]bool)

	plan := &Plan{categories: make([]Category, 0, len(categories))}
	for _, c := range categories {
		if c.ID == "" {
			return nil, fmt.Errorf("category id is required")
		}
		if seenCategories[c.ID] {
			return nil, fmt.Errorf("duplicate category %q", c.ID)
		}
		seenCategories[c.ID] = true

		probes := make([]Probe, len(c.Probes))
		for i, p := range c.Probes {
			if p.Name == "" {
				return nil, fmt.Errorf("category %q: probe %d has no name", c.ID, i)
			}
			if p.Measure == nil {
				return nil, fmt.Errorf("category %q: probe %q has no measure function", c.ID, p.Name)
			}
			if seenProbes[p.Name] {
				return nil, fmt.Errorf("duplicate probe %q", p.Name)
			}
			seenProbes[p.Name] = true
			p.Category = c.ID
			probes[i] = p
		}
		c.Probes = probes
		if c.Title == "" {
			c.Title = string(c.ID)
		}
		plan.categories = append(plan.categories, c)
	}
	return plan, nil
}

// Categories returns the plan's categories in execution order.
func (p *Plan) Categories() []Category {
	if p == nil {
		return nil
	}
	out := make([]Category, len(p.categories))
	copy(out, p.categories)
	return out
}

// IDs returns the category IDs in execution order.
func (p *Plan) IDs() []CategoryID {
	if p == nil {
		return nil
	}
	ids := make([]CategoryID, len(p.categories))
	for i, c := range p.categories {
		ids[i] = c.ID
	}
	return ids
}

// ProbeCount returns the number of probes across all categories.
func (p *Plan) ProbeCount() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, c := range p.categories {
		n += len(c.Probes)
	}
	return n
}

// Select returns a plan containing only the given categories, in the
// original plan order. Selecting nothing returns the plan unchanged.
func (p *Plan) Select(ids ...CategoryID) (*Plan, error) {
	if len(ids) == 0 {
		return p, nil
	}

	want := make(map[CategoryID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	selected := &Plan{}
	for _, c := range p.categories {
		if want[c.ID] {
			selected.categories = append(selected.categories, c)
			delete(want, c.ID)
		}
	}

	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for _, id := range ids {
			if want[id] {
				unknown = append(unknown, string(id))
				delete(want, id)
			}
		}
		return nil, fmt.Errorf("unknown categories: %s (available: %s)",
			strings.Join(unknown, ", "), joinIDs(p.IDs()))
	}
	return selected, nil
}

func joinIDs(ids []CategoryID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
