// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "sort"

const noMatch = -1

// MatchDetector tracks which participants approved each option and decides
// the match. It is not safe for concurrent use; the owning Room guards it.
type MatchDetector struct {
	approvals []map[string]struct{}
	match     int
}

func NewMatchDetector(options int) *MatchDetector {
	d := &MatchDetector{
		approvals: make([]map[string]struct{}, options),
		match:     noMatch,
	}
	for i := range d.approvals {
		d.approvals[i] = make(map[string]struct{})
	}
	return d
}

// Approve records participant's approval of option. It returns the option
// and true when this approval brings the set to at least active members and
// no match existed yet. Once a match is decided Approve is a no-op, so late
// votes never replace it.
func (d *MatchDetector) Approve(option int, participant string, active int) (int, bool) {
	if d.match != noMatch || option < 0 || option >= len(d.approvals) {
		return noMatch, false
	}

	set := d.approvals[option]
	set[participant] = struct{}{}
	if len(set) >= active {
		d.match = option
		return option, true
	}
	return noMatch, false
}

// Purge removes participant from every approval set. It never decides a
// match; a lowered quorum only applies to the next Approve.
func (d *MatchDetector) Purge(participant string) {
	for _, set := range d.approvals {
		delete(set, participant)
	}
}

// Match returns the decided option, if any.
func (d *MatchDetector) Match() (int, bool) {
	return d.match, d.match != noMatch
}

// Reset clears the match and every approval so a new round can begin.
func (d *MatchDetector) Reset() {
	d.match = noMatch
	for _, set := range d.approvals {
		clear(set)
	}
}

// Approvers returns the sorted participants who approved option.
func (d *MatchDetector) Approvers(option int) []string {
	if option < 0 || option >= len(d.approvals) {
		return nil
	}
	out := make([]string, 0, len(d.approvals[option]))
	for p := range d.approvals[option] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len is the number of options tracked.
func (d *MatchDetector) Len() int { return len(d.approvals) }

// restore sets state from a snapshot; the caller validates it.
func (d *MatchDetector) restore(approvals [][]string, match *int) {
	for i, approvers := range approvals {
		for _, p := range approvers {
			d.approvals[i][p] = struct{}{}
		}
	}
	if match != nil {
		d.match = *match
	}
}
