// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	"reflect"
	"testing"
)

func TestRegistryLookupByNameOrID(t *testing.T) {
	g := NewRegistry()
	g.Insert(Record{ID: "aaaa1111bbbb", Name: "web", Status: StatusRunning})
	g.Insert(Record{ID: "cccc2222dddd", Name: "db", Status: StatusRunning})

	if rec, ok := g.Lookup("web"); !ok || rec.ID != "aaaa1111bbbb" {
		t.Errorf("Lookup by name = (%+v, %v)", rec, ok)
	}
	if rec, ok := g.Lookup("cccc2222dddd"); !ok || rec.Name != "db" {
		t.Errorf("Lookup by id = (%+v, %v)", rec, ok)
	}
	if _, ok := g.Lookup("ghost"); ok {
		t.Error("Lookup of an untracked container must miss")
	}
}

func TestRegistryUpdateStatus(t *testing.T) {
	g := NewRegistry()
	g.Insert(Record{ID: "aaaa1111bbbb", Name: "web", Status: StatusRunning})

	if !g.UpdateStatus("aaaa1111bbbb", StatusExited) {
		t.Fatal("UpdateStatus by id must match")
	}
	if rec, _ := g.Lookup("web"); rec.Status != StatusExited {
		t.Errorf("status = %q, want exited", rec.Status)
	}
	if g.UpdateStatus("ghost", StatusExited) {
		t.Error("UpdateStatus of an untracked container must report no match")
	}
}

func TestRegistryDelete(t *testing.T) {
	g := NewRegistry()
	g.Insert(Record{ID: "aaaa1111bbbb", Name: "web"})

	if !g.Delete("aaaa1111bbbb") {
		t.Fatal("Delete by id must match")
	}
	if g.Len() != 0 {
		t.Errorf("Len() = %d after delete, want 0", g.Len())
	}
	if g.Delete("web") {
		t.Error("second Delete must report no match")
	}
}

func TestRegistryLastInsertWins(t *testing.T) {
	g := NewRegistry()
	g.Insert(Record{ID: "aaaa1111bbbb", Name: "web", Image: "first"})
	g.Insert(Record{ID: "cccc2222dddd", Name: "web", Image: "second"})

	rec, _ := g.Lookup("web")
	if rec.Image != "second" || g.Len() != 1 {
		t.Errorf("same-name insert must overwrite, got %+v (len %d)", rec, g.Len())
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	g := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		g.Insert(Record{Name: name})
	}

	if got, want := g.Names(), []string{"alpha", "mid", "zeta"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
