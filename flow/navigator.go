package flow

import (
	"fmt"

	"github.com/andyoucreate/rilaykit/model"
)

// Warning codes produced by the Navigator's static analysis.
const (
	WarnUnreachablePage = "UNREACHABLE_PAGE"
	WarnNoDefaultRule   = "NO_DEFAULT_RULE"
	WarnUnknownTarget   = "UNKNOWN_TARGET"
)

// Warning is an advisory finding about a flow's page graph.
type Warning struct {
	Code    string `json:"code"`
	PageID  string `json:"page_id"`
	Message string `json:"message"`
}

// Navigator performs static analysis of a flow's navigation graph. Unlike
// the stateful Engine it never evaluates conditions; it is meant to run
// offline or at build time, not during live traversal.
type Navigator struct {
	startPage string
	pages     []model.Page
	rules     []model.NavigationRule
}

// NewNavigator creates a Navigator over the flow config's graph.
func NewNavigator(cfg Config) *Navigator {
	return &Navigator{startPage: cfg.StartPage, pages: cfg.Pages, rules: cfg.Rules}
}

// NewNavigatorForDefinition creates a Navigator directly from a YAML-loaded
// flow definition.
func NewNavigatorForDefinition(def model.FlowDefinition) *Navigator {
	pages := make([]model.Page, 0, len(def.Pages))
	for _, p := range def.Pages {
		pages = append(pages, model.Page{ID: p.ID, Title: p.Title, Type: p.Type})
	}
	return &Navigator{startPage: def.StartPage, pages: pages, rules: def.Rules}
}

// Analyze computes reachability from the start page via a fixed-point walk
// over the rules and reports unreachable pages, pages whose conditional
// rules lack a default fallback, and rules targeting undeclared pages. The
// rule graph may contain cycles, so the walk uses a visited set rather than
// recursion.
func (n *Navigator) Analyze() []Warning {
	var warnings []Warning

	pageIDs := make(map[string]bool, len(n.pages))
	for _, p := range n.pages {
		pageIDs[p.ID] = true
	}

	// Adjacency over all rule edges, condition-independent.
	adjacent := make(map[string][]string)
	for _, r := range n.rules {
		adjacent[r.From] = append(adjacent[r.From], r.To)
		if !pageIDs[r.To] {
			warnings = append(warnings, Warning{
				Code:    WarnUnknownTarget,
				PageID:  r.To,
				Message: fmt.Sprintf("rule from %q targets undeclared page %q", r.From, r.To),
			})
		}
	}

	// Breadth-first reachability with a visited set; cycles terminate at
	// the fixed point.
	visited := make(map[string]bool)
	queue := []string{n.startPage}
	for len(queue) > 0 {
		page := queue[0]
		queue = queue[1:]
		if visited[page] {
			continue
		}
		visited[page] = true
		queue = append(queue, adjacent[page]...)
	}

	for _, p := range n.pages {
		if !visited[p.ID] {
			warnings = append(warnings, Warning{
				Code:    WarnUnreachablePage,
				PageID:  p.ID,
				Message: fmt.Sprintf("page %q is not reachable from %q", p.ID, n.startPage),
			})
		}
	}

	// Pages with conditional rules but no default fallback can strand a
	// flow when no condition matches.
	conditional := make(map[string]bool)
	hasDefault := make(map[string]bool)
	for _, r := range n.rules {
		if r.Condition != nil {
			conditional[r.From] = true
		} else if r.Default {
			hasDefault[r.From] = true
		}
	}
	for _, p := range n.pages {
		if conditional[p.ID] && !hasDefault[p.ID] {
			warnings = append(warnings, Warning{
				Code:    WarnNoDefaultRule,
				PageID:  p.ID,
				Message: fmt.Sprintf("page %q has conditional rules but no default rule", p.ID),
			})
		}
	}

	return warnings
}
