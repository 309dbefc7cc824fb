// Package icons implements the icon policy and the icon lookup, scaling
// and export steps of metadata composition.
package icons

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// State designates how icons of one size are delivered.
type State int

// Icon delivery states.
const (
	StateIgnored State = iota
	StateCached
	StateCachedRemote
	StateRemoteOnly
)

// String returns the policy-string name of the state.
func (s State) String() string {
	switch s {
	case StateCached:
		return "cached"
	case StateCachedRemote:
		return "cached-remote"
	case StateRemoteOnly:
		return "remote"
	default:
		return "ignored"
	}
}

// ParseState converts a policy-string state name.
func ParseState(s string) (State, error) {
	switch s {
	case "ignored", "ignore":
		return StateIgnored, nil
	case "cached":
		return StateCached, nil
	case "cached-remote":
		return StateCachedRemote, nil
	case "remote":
		return StateRemoteOnly, nil
	default:
		return StateIgnored, fmt.Errorf("unknown icon policy state %q", s)
	}
}

// PolicyEntry is the delivery rule for one icon size/scale combination.
type PolicyEntry struct {
	Size  int
	Scale int
	State State
}

// Policy maps icon sizes to delivery states.
type Policy struct {
	entries []PolicyEntry
}

// NewPolicy creates the default icon policy: 48 and 64px icons are cached,
// 128px icons are additionally served remotely.
func NewPolicy() *Policy {
	p := &Policy{}
	p.SetPolicy(48, 1, StateCached)
	p.SetPolicy(48, 2, StateCached)
	p.SetPolicy(64, 1, StateCached)
	p.SetPolicy(64, 2, StateCached)
	p.SetPolicy(128, 1, StateCachedRemote)
	p.SetPolicy(128, 2, StateCachedRemote)
	return p
}

// SetPolicy sets the state for one size/scale, replacing a previous rule.
func (p *Policy) SetPolicy(size, scale int, state State) {
	if scale < 1 {
		scale = 1
	}
	for i := range p.entries {
		if p.entries[i].Size == size && p.entries[i].Scale == scale {
			p.entries[i].State = state
			return
		}
	}
	p.entries = append(p.entries, PolicyEntry{Size: size, Scale: scale, State: state})
	sort.Slice(p.entries, func(i, j int) bool {
		if p.entries[i].Size != p.entries[j].Size {
			return p.entries[i].Size < p.entries[j].Size
		}
		return p.entries[i].Scale < p.entries[j].Scale
	})
}

// Entries returns the policy rules, ordered by size and scale.
func (p *Policy) Entries() []PolicyEntry { return p.entries }

// String serializes the policy to its compact text form,
// e.g. "48x48=cached,128x128@2=cached-remote".
func (p *Policy) String() string {
	parts := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		sizeStr := fmt.Sprintf("%dx%d", e.Size, e.Size)
		if e.Scale > 1 {
			sizeStr += "@" + strconv.Itoa(e.Scale)
		}
		parts = append(parts, sizeStr+"="+e.State.String())
	}
	return strings.Join(parts, ",")
}

// ParsePolicy parses the compact policy text form.
func ParsePolicy(s string) (*Policy, error) {
	p := &Policy{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sizePart, statePart, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid icon policy entry %q, missing state", part)
		}
		state, err := ParseState(statePart)
		if err != nil {
			return nil, err
		}

		scale := 1
		if sizeStr, scaleStr, ok := strings.Cut(sizePart, "@"); ok {
			scale, err = strconv.Atoi(scaleStr)
			if err != nil || scale < 1 {
				return nil, fmt.Errorf("invalid icon scale in policy entry %q", part)
			}
			sizePart = sizeStr
		}

		wStr, hStr, ok := strings.Cut(sizePart, "x")
		if !ok {
			return nil, fmt.Errorf("invalid icon size in policy entry %q", part)
		}
		w, errW := strconv.Atoi(wStr)
		h, errH := strconv.Atoi(hStr)
		if errW != nil || errH != nil || w != h || w <= 0 {
			return nil, fmt.Errorf("invalid icon size in policy entry %q", part)
		}

		p.SetPolicy(w, scale, state)
	}
	if len(p.entries) == 0 {
		return nil, fmt.Errorf("icon policy %q contains no entries", s)
	}
	return p, nil
}
