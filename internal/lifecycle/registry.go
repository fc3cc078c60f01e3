// SPDX-License-Identifier: MPL-2.0

package lifecycle

import "sort"

type (
	// Registry tracks the containers a Manager created, keyed by container
	// name. It is plain in-memory state with a single logical mutator (the
	// owning Manager), so it carries no lock. Two in-flight creates sharing
	// a name are a documented race: the second insert wins.
	Registry struct {
		records map[string]Record
	}
)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[string]Record)}
}

// Insert stores rec under its name, replacing any previous entry.
func (g *Registry) Insert(rec Record) {
	g.records[rec.Name] = rec
}

// Lookup finds a record by container name or ID.
func (g *Registry) Lookup(nameOrID string) (Record, bool) {
	if rec, ok := g.records[nameOrID]; ok {
		return rec, true
	}
	for _, rec := range g.records {
		if rec.ID == nameOrID {
			return rec, true
		}
	}
	return Record{}, false
}

// UpdateStatus sets the status of the record matching nameOrID, reporting
// whether a record matched.
func (g *Registry) UpdateStatus(nameOrID string, status Status) bool {
	rec, ok := g.Lookup(nameOrID)
	if !ok {
		return false
	}
	rec.Status = status
	g.records[rec.Name] = rec
	return true
}

// Delete removes the record matching nameOrID, reporting whether one
// matched.
func (g *Registry) Delete(nameOrID string) bool {
	rec, ok := g.Lookup(nameOrID)
	if !ok {
		return false
	}
	delete(g.records, rec.Name)
	return true
}

// Names returns the tracked container names in sorted order.
func (g *Registry) Names() []string {
	names := make([]string, 0, len(g.records))
	for name := range g.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of tracked containers.
func (g *Registry) Len() int {
	return len(g.records)
}
