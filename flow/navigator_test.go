package flow

import (
	"testing"

	"github.com/andyoucreate/rilaykit/model"
)

func warningCodes(warnings []Warning) map[string][]string {
	byCode := make(map[string][]string)
	for _, w := range warnings {
		byCode[w.Code] = append(byCode[w.Code], w.PageID)
	}
	return byCode
}

func TestNavigator_CleanGraph(t *testing.T) {
	n := NewNavigator(twoPageConfig())
	if warnings := n.Analyze(); len(warnings) != 0 {
		t.Errorf("clean graph produced warnings: %+v", warnings)
	}
}

func TestNavigator_UnreachablePage(t *testing.T) {
	cfg := twoPageConfig()
	cfg.Pages = append(cfg.Pages, model.Page{ID: "orphan"})

	byCode := warningCodes(NewNavigator(cfg).Analyze())
	if got := byCode[WarnUnreachablePage]; len(got) != 1 || got[0] != "orphan" {
		t.Errorf("unreachable warnings = %v, want [orphan]", got)
	}
}

func TestNavigator_UnknownTarget(t *testing.T) {
	cfg := twoPageConfig()
	cfg.Rules = append(cfg.Rules, model.NavigationRule{From: "summary", To: "ghost", Default: true})

	byCode := warningCodes(NewNavigator(cfg).Analyze())
	if got := byCode[WarnUnknownTarget]; len(got) != 1 || got[0] != "ghost" {
		t.Errorf("unknown target warnings = %v, want [ghost]", got)
	}
}

func TestNavigator_ConditionalWithoutDefault(t *testing.T) {
	cfg := Config{
		StartPage: "a",
		Pages:     []model.Page{{ID: "a"}, {ID: "b"}},
		Rules: []model.NavigationRule{
			{From: "a", To: "b", Condition: &model.Condition{
				Field: "x", Operator: model.OpExists,
			}},
		},
	}

	byCode := warningCodes(NewNavigator(cfg).Analyze())
	if got := byCode[WarnNoDefaultRule]; len(got) != 1 || got[0] != "a" {
		t.Errorf("no-default warnings = %v, want [a]", got)
	}
}

func TestNavigator_CyclicGraphTerminates(t *testing.T) {
	cfg := Config{
		StartPage: "a",
		Pages:     []model.Page{{ID: "a"}, {ID: "b"}},
		Rules: []model.NavigationRule{
			{From: "a", To: "b", Default: true},
			{From: "b", To: "a", Default: true},
		},
	}

	// The cycle a->b->a must reach a fixed point, not loop forever.
	if warnings := NewNavigator(cfg).Analyze(); len(warnings) != 0 {
		t.Errorf("cyclic but fully reachable graph produced warnings: %+v", warnings)
	}
}

func TestNavigator_ForDefinition(t *testing.T) {
	def := model.FlowDefinition{
		ID:        "onboarding",
		StartPage: "welcome",
		Pages: []model.PageDefinition{
			{ID: "welcome", Type: model.PageTypeConfigurable},
			{ID: "dangling", Type: model.PageTypeConfigurable},
		},
	}

	byCode := warningCodes(NewNavigatorForDefinition(def).Analyze())
	if got := byCode[WarnUnreachablePage]; len(got) != 1 || got[0] != "dangling" {
		t.Errorf("unreachable warnings = %v, want [dangling]", got)
	}
}
