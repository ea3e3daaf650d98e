package dashboard

import "inquiry-dashboard/internal/models"

// Facets are the two independent filter values. An empty facet matches everything.
type Facets struct {
	Agent string
	Stage string
}

func (f Facets) Match(inq models.Inquiry) bool {
	if f.Agent != "" && inq.Agent != f.Agent {
		return false
	}
	if f.Stage != "" && inq.Stage != f.Stage {
		return false
	}
	return true
}

// Apply returns the inquiries matching both facets, keeping their order.
func (f Facets) Apply(rows []models.Inquiry) []models.Inquiry {
	out := make([]models.Inquiry, 0, len(rows))
	for _, row := range rows {
		if f.Match(row) {
			out = append(out, row)
		}
	}
	return out
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

// FilterControl is the view model of the agent and stage selectors.
type FilterControl struct {
	Agents []Option
	Stages []Option
}

func NewFilterControl(roster models.Roster, facets Facets) FilterControl {
	return FilterControl{
		Agents: options("All Agents", roster.Agents, facets.Agent),
		Stages: options("All Stages", roster.Stages, facets.Stage),
	}
}

func options(allLabel string, values []string, selected string) []Option {
	out := make([]Option, 0, len(values)+1)
	out = append(out, Option{Value: "", Label: allLabel, Selected: selected == ""})
	for _, v := range values {
		out = append(out, Option{Value: v, Label: v, Selected: v == selected})
	}
	return out
}
