package definition

import (
	"sync"
	"testing"

	"github.com/andyoucreate/rilaykit/model"
)

func registryDefs() []model.FlowDefinition {
	return []model.FlowDefinition{
		{
			ID:        "onboarding",
			StartPage: "profile",
			Checksum:  "abc123",
			Pages: []model.PageDefinition{
				{ID: "profile", Title: "Profile", Type: model.PageTypeConfigurable},
				{ID: "done", Title: "Done", Type: model.PageTypeConfigurable},
			},
		},
		{
			ID:        "checkout",
			StartPage: "cart",
			Checksum:  "def456",
			Pages: []model.PageDefinition{
				{ID: "cart", Title: "Cart", Type: model.PageTypeConfigurable},
			},
		},
	}
}

func TestRegistry_GetFlow(t *testing.T) {
	r := NewRegistry(registryDefs())

	f, ok := r.GetFlow("onboarding")
	if !ok {
		t.Fatal("GetFlow(onboarding) not found")
	}
	if f.StartPage != "profile" {
		t.Errorf("StartPage = %q, want profile", f.StartPage)
	}

	if _, ok := r.GetFlow("unknown"); ok {
		t.Error("GetFlow(unknown) should return false")
	}
}

func TestRegistry_GetPage(t *testing.T) {
	r := NewRegistry(registryDefs())

	p, ok := r.GetPage("onboarding", "profile")
	if !ok {
		t.Fatal("GetPage(onboarding, profile) not found")
	}
	if p.Title != "Profile" {
		t.Errorf("Title = %q, want Profile", p.Title)
	}

	// Page IDs are flow-scoped.
	if _, ok := r.GetPage("checkout", "profile"); ok {
		t.Error("profile should not resolve under checkout")
	}
}

func TestRegistry_AllFlows(t *testing.T) {
	r := NewRegistry(registryDefs())
	if got := len(r.AllFlows()); got != 2 {
		t.Errorf("AllFlows = %d, want 2", got)
	}
}

func TestRegistry_Checksum(t *testing.T) {
	r := NewRegistry(registryDefs())
	first := r.Checksum()
	if first == "" {
		t.Fatal("checksum should be computed")
	}

	// Order-independent: the same definitions in reverse yield the same
	// combined checksum.
	defs := registryDefs()
	reversed := []model.FlowDefinition{defs[1], defs[0]}
	if got := NewRegistry(reversed).Checksum(); got != first {
		t.Errorf("checksum depends on definition order: %q vs %q", got, first)
	}
}

func TestRegistry_Replace(t *testing.T) {
	r := NewRegistry(registryDefs())
	before := r.Checksum()

	r.Replace([]model.FlowDefinition{{ID: "survey", StartPage: "q1", Checksum: "zzz"}})

	if _, ok := r.GetFlow("onboarding"); ok {
		t.Error("Replace should drop the previous set")
	}
	if _, ok := r.GetFlow("survey"); !ok {
		t.Error("Replace should install the new set")
	}
	if r.Checksum() == before {
		t.Error("checksum should change on Replace")
	}
}

func TestRegistry_ConcurrentReadsDuringReplace(t *testing.T) {
	r := NewRegistry(registryDefs())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.GetFlow("onboarding")
				r.AllFlows()
				r.Checksum()
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				r.Replace(registryDefs())
			}
		}()
	}
	wg.Wait()
}
