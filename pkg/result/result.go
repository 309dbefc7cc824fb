// Package result collects the components and diagnostic hints produced
// while processing one unit.
//
// A Result owns the set of valid components for its unit. Attaching an
// error-severity hint to a component removes the component from the valid
// set but keeps the hint, so reports can explain why a component is absent
// from the generated catalog.
package result

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/appstream-tools/compose/pkg/appstream"
	"github.com/appstream-tools/compose/pkg/hints"
)

// Result holds the outcome of processing a single unit.
type Result struct {
	mu       sync.Mutex
	unitID   string
	cpts     map[string]*appstream.Component // cid → component
	mdataH   map[string]string               // cid → metadata hash
	cptHints map[string][]*hints.Hint        // cid → hints
}

// New creates an empty result for the named unit.
func New(unitID string) *Result {
	return &Result{
		unitID:   unitID,
		cpts:     make(map[string]*appstream.Component),
		mdataH:   make(map[string]string),
		cptHints: make(map[string][]*hints.Hint),
	}
}

// UnitID returns the identifier of the unit this result belongs to.
func (r *Result) UnitID() string { return r.unitID }

// AddComponent registers a component as valid. The source bytes the
// component was parsed from are hashed to derive its global ID. A second
// component with an already registered id is rejected.
func (r *Result) AddComponent(cpt *appstream.Component, sourceData []byte) bool {
	if cpt.ID == "" {
		return false
	}
	sum := md5.Sum(sourceData)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.cpts[cpt.ID]; dup {
		return false
	}
	r.cpts[cpt.ID] = cpt
	r.mdataH[cpt.ID] = hex.EncodeToString(sum[:])
	return true
}

// UpdateComponentGCID rehashes a component's metadata, refreshing the
// global ID after the component was modified.
func (r *Result) UpdateComponentGCID(cpt *appstream.Component, sourceData []byte) bool {
	if cpt.ID == "" {
		return false
	}
	sum := md5.Sum(sourceData)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cpts[cpt.ID]; !ok {
		return false
	}
	r.mdataH[cpt.ID] = hex.EncodeToString(sum[:])
	return true
}

// AddHint attaches a hint to a component. If the hint's severity is error,
// the component is dropped from the valid set. Unknown tags are recorded as
// internal-unknown-tag errors instead. The vars are flattened key/value
// pairs for the explanation template.
//
// It reports whether the component is still valid afterwards.
func (r *Result) AddHint(cpt *appstream.Component, tag string, vars ...string) bool {
	cid := ""
	if cpt != nil {
		cid = cpt.ID
	}
	return r.AddHintByCID(cid, tag, vars...)
}

// AddHintByCID is AddHint for cases where only the component-id is known,
// e.g. when parsing failed before a component could be constructed.
func (r *Result) AddHintByCID(cid, tag string, vars ...string) bool {
	h, err := hints.NewForTag(tag)
	if err != nil {
		h, _ = hints.NewForTag("internal-unknown-tag")
		h.AddExplanationVar("tag", tag)
	}
	for i := 0; i+1 < len(vars); i += 2 {
		h.AddExplanationVar(vars[i], vars[i+1])
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cptHints[cid] = append(r.cptHints[cid], h)

	if h.IsError() {
		// unit-level hints (empty cid) have no component to invalidate
		delete(r.cpts, cid)
		return cid == ""
	}
	_, ok := r.cpts[cid]
	return ok || cid == ""
}

// Component returns the valid component with the given id, or nil.
func (r *Result) Component(cid string) *appstream.Component {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cpts[cid]
}

// Components returns all valid components, sorted by id.
func (r *Result) Components() []*appstream.Component {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*appstream.Component, 0, len(r.cpts))
	for _, cpt := range r.cpts {
		out = append(out, cpt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ComponentIDsWithHints returns every component-id that collected hints,
// sorted. The empty id groups unit-level hints.
func (r *Result) ComponentIDsWithHints() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.cptHints))
	for cid := range r.cptHints {
		out = append(out, cid)
	}
	sort.Strings(out)
	return out
}

// Hints returns the hints collected for a component-id.
func (r *Result) Hints(cid string) []*hints.Hint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cptHints[cid]
}

// ComponentsCount returns the number of valid components.
func (r *Result) ComponentsCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cpts)
}

// HintsCount returns the total number of hints across all components.
func (r *Result) HintsCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, hs := range r.cptHints {
		n += len(hs)
	}
	return n
}

// IsIgnored reports whether processing this unit yielded nothing at all,
// neither components nor hints.
func (r *Result) IsIgnored() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cpts) == 0 && len(r.cptHints) == 0
}

// GcidForComponent returns the global ID of a valid component, built from
// its component-id and metadata hash.
func (r *Result) GcidForComponent(cpt *appstream.Component) (string, error) {
	r.mu.Lock()
	hash := r.mdataH[cpt.ID]
	r.mu.Unlock()
	return BuildGlobalID(cpt.ID, hash)
}
