// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DevDaysSpring2024-29/project/models"
	"github.com/DevDaysSpring2024-29/project/providers"
)

const subscriberBuffer = 16

// Room is one voting session. Every mutation runs under mu for its full
// duration, including the catalog fetch in StartVote.
type Room struct {
	mu sync.RWMutex

	id           string
	owner        string
	status       string
	params       models.RoomParams
	participants []string // join order
	options      []models.Entry
	schedules    map[string]*models.Schedule
	detector     *MatchDetector // nil until voting
	createdAt    time.Time
	updatedAt    time.Time

	started     chan struct{} // closed on open -> voting
	done        chan struct{} // closed when the room is disposed
	subscribers map[string]chan models.Event

	catalog   Catalog
	scheduler *Scheduler
	store     Store
	now       func() time.Time
}

type roomDeps struct {
	catalog   Catalog
	scheduler *Scheduler
	store     Store
	now       func() time.Time
}

func newRoom(id, owner string, params models.RoomParams, deps roomDeps) *Room {
	now := deps.now()
	return &Room{
		id:           id,
		owner:        owner,
		status:       models.StatusOpen,
		params:       params,
		participants: []string{owner},
		schedules:    make(map[string]*models.Schedule),
		createdAt:    now,
		updatedAt:    now,
		started:      make(chan struct{}),
		done:         make(chan struct{}),
		subscribers:  make(map[string]chan models.Event),
		catalog:      deps.catalog,
		scheduler:    deps.scheduler,
		store:        deps.store,
		now:          deps.now,
	}
}

func (r *Room) ID() string { return r.id }

func (r *Room) Status() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

func (r *Room) Owner() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner
}

// Participants returns the members in join order.
func (r *Room) Participants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.participants)
}

// StartVote fixes the option list and begins swiping. Only the owner may
// call it, once. For provider-backed categories the catalog is queried
// while the room lock is held, so joins and leaves queue behind the fetch.
// On failure the room stays open and unchanged.
func (r *Room) StartVote(ctx context.Context, participant string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == models.StatusClosed {
		return ErrRoomNotFound
	}
	if r.status != models.StatusOpen {
		return ErrAlreadyVoting
	}
	if participant != r.owner {
		return ErrForbidden
	}

	options := slices.Clone(r.options)
	if r.params.ProviderName != providers.Custom {
		provider, ok := r.catalog.Lookup(r.params.ProviderName)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownProvider, r.params.ProviderName)
		}

		exclude := make([]string, 0, len(options))
		for _, e := range options {
			exclude = append(exclude, e.Name)
		}
		fetched, err := provider.FetchEntries(ctx, models.FetchRequest{
			Filters:      r.params.Filters,
			ExcludeNames: exclude,
		})
		if err != nil {
			return fmt.Errorf("fetching %s entries: %w", r.params.ProviderName, err)
		}

		fetched = slices.DeleteFunc(fetched, func(e models.Entry) bool {
			return validateEntry(e) != nil
		})
		r.scheduler.Shuffle(fetched)
		options = append(options, fetched...)
	}

	if len(options) == 0 {
		return ErrNoOptions
	}

	r.options = options
	r.detector = NewMatchDetector(len(options))
	for _, p := range r.participants {
		r.schedules[p] = r.scheduler.NewSchedule(len(options))
	}
	r.status = models.StatusVoting
	close(r.started)

	slog.Info("voting started", "room_id", r.id, "participants", len(r.participants), "options", len(options))
	r.publishLocked(models.EventVotingStarted, participant, nil)
	r.changedLocked(ctx)
	return nil
}

// AddEntry appends a manually entered option. Owner only, before voting.
func (r *Room) AddEntry(ctx context.Context, participant string, entry models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == models.StatusClosed {
		return ErrRoomNotFound
	}
	if participant != r.owner {
		return ErrForbidden
	}
	if r.status != models.StatusOpen {
		return ErrAlreadyVoting
	}
	if err := validateEntry(entry); err != nil {
		return err
	}

	r.options = append(r.options, entry)
	r.publishLocked(models.EventEntryAdded, participant, &entry)
	r.changedLocked(ctx)
	return nil
}

// CurrentOption returns the option at participant's cursor together with
// the room's match, if one was decided.
func (r *Room) CurrentOption(participant string) (models.Entry, *models.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sch, err := r.scheduleLocked(participant)
	if err != nil {
		return models.Entry{}, nil, err
	}
	return r.options[sch.Order[sch.Cursor]], r.matchLocked(), nil
}

// Vote records participant's swipe on their current option and advances
// their cursor. It returns the room's match after the vote, if any.
func (r *Room) Vote(ctx context.Context, participant string, liked bool) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sch, err := r.scheduleLocked(participant)
	if err != nil {
		return nil, err
	}

	if liked {
		option := sch.Order[sch.Cursor]
		if idx, ok := r.detector.Approve(option, participant, len(r.participants)); ok {
			matched := r.options[idx]
			slog.Info("match found", "room_id", r.id, "option", matched.Name, "participants", len(r.participants))
			r.publishLocked(models.EventMatch, participant, &matched)
		}
	}

	if r.scheduler.Advance(sch) {
		// a full pass ended without agreement; start the next one clean
		r.detector.Purge(participant)
	}

	r.changedLocked(ctx)
	return r.matchLocked(), nil
}

// GetMatch returns the decided option, or nil.
func (r *Room) GetMatch(participant string) (*models.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.status == models.StatusClosed {
		return nil, ErrRoomNotFound
	}
	if !r.hasLocked(participant) {
		return nil, ErrParticipantNotFound
	}
	return r.matchLocked(), nil
}

// ResetMatch clears the match and all approvals so the group can keep
// swiping for another option without creating a new room.
func (r *Room) ResetMatch(ctx context.Context, participant string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == models.StatusClosed {
		return ErrRoomNotFound
	}
	if r.status != models.StatusVoting {
		return ErrNotVoting
	}
	if !r.hasLocked(participant) {
		return ErrParticipantNotFound
	}

	r.detector.Reset()
	r.publishLocked(models.EventMatchReset, participant, nil)
	r.changedLocked(ctx)
	return nil
}

// WaitVoting blocks until voting starts, the room is disposed, or ctx is
// done.
func (r *Room) WaitVoting(ctx context.Context) error {
	select {
	case <-r.started:
		return nil
	default:
	}

	select {
	case <-r.started:
		return nil
	case <-r.done:
		return ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers for room events. Slow subscribers miss events rather
// than block the room. The channel is closed by the returned cancel func or
// when the room is disposed.
func (r *Room) Subscribe() (<-chan models.Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan models.Event, subscriberBuffer)
	if r.status == models.StatusClosed {
		close(ch)
		return ch, func() {}
	}

	id := uuid.NewString()
	r.subscribers[id] = ch

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subscribers[id]; ok {
			delete(r.subscribers, id)
			close(sub)
		}
	}
}

// Snapshot returns a deep copy of the room state.
func (r *Room) Snapshot() models.RoomSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// IdleSince reports when the room last changed.
func (r *Room) IdleSince() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updatedAt
}

// Helpers below expect r.mu to be held.

func (r *Room) hasLocked(participant string) bool {
	return slices.Contains(r.participants, participant)
}

func (r *Room) scheduleLocked(participant string) (*models.Schedule, error) {
	switch r.status {
	case models.StatusClosed:
		return nil, ErrRoomNotFound
	case models.StatusVoting:
	default:
		return nil, ErrNotVoting
	}
	sch, ok := r.schedules[participant]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return sch, nil
}

func (r *Room) matchLocked() *models.Entry {
	if r.detector == nil {
		return nil
	}
	idx, ok := r.detector.Match()
	if !ok {
		return nil
	}
	entry := r.options[idx]
	return &entry
}

func (r *Room) addLocked(participant string) {
	r.participants = append(r.participants, participant)
}

// removeLocked drops participant from membership, schedules, and every
// approval set. It hands ownership to the earliest remaining member and
// reports the new owner ("" if unchanged) and whether the room is empty.
func (r *Room) removeLocked(participant string) (newOwner string, empty bool) {
	r.participants = slices.DeleteFunc(r.participants, func(p string) bool {
		return p == participant
	})
	delete(r.schedules, participant)
	if r.detector != nil {
		r.detector.Purge(participant)
	}

	if len(r.participants) == 0 {
		return "", true
	}
	if participant == r.owner {
		r.owner = r.participants[0]
		return r.owner, false
	}
	return "", false
}

// closeLocked disposes the room: status becomes closed, waiters are woken,
// subscribers get a final event and their channels are closed.
func (r *Room) closeLocked(ctx context.Context) {
	if r.status == models.StatusClosed {
		return
	}
	r.status = models.StatusClosed
	close(r.done)

	r.publishLocked(models.EventClosed, "", nil)
	for id, ch := range r.subscribers {
		delete(r.subscribers, id)
		close(ch)
	}

	if r.store != nil {
		if err := r.store.DeleteRoom(ctx, r.id); err != nil {
			slog.Error("failed to delete room snapshot", "room_id", r.id, "error", err)
		}
	}
}

func (r *Room) publishLocked(kind, participant string, entry *models.Entry) {
	if len(r.subscribers) == 0 {
		return
	}
	ev := models.Event{
		ID:          uuid.NewString(),
		Kind:        kind,
		RoomID:      r.id,
		Participant: participant,
		Entry:       entry,
		At:          r.now(),
	}
	for _, ch := range r.subscribers {
		select {
		case ch <- ev:
		default:
			// subscriber is behind; drop rather than block the room
		}
	}
}

// changedLocked stamps the mutation time and mirrors the room to the store.
// Writes happen under the room lock, so the store sees them in order.
func (r *Room) changedLocked(ctx context.Context) {
	r.updatedAt = r.now()
	if r.store == nil {
		return
	}
	if err := r.store.SaveRoom(ctx, r.snapshotLocked()); err != nil {
		slog.Error("failed to save room snapshot", "room_id", r.id, "error", err)
	}
}

func (r *Room) snapshotLocked() models.RoomSnapshot {
	snap := models.RoomSnapshot{
		ID:           r.id,
		Owner:        r.owner,
		Status:       r.status,
		Params:       r.params,
		Participants: slices.Clone(r.participants),
		Options:      slices.Clone(r.options),
		CreatedAt:    r.createdAt,
		UpdatedAt:    r.updatedAt,
	}
	if r.params.Filters != nil {
		snap.Params.Filters = make(models.Filters, len(r.params.Filters))
		for k, v := range r.params.Filters {
			snap.Params.Filters[k] = v
		}
	}

	if r.detector != nil {
		snap.Schedules = make(map[string]models.Schedule, len(r.schedules))
		for p, sch := range r.schedules {
			snap.Schedules[p] = models.Schedule{Order: slices.Clone(sch.Order), Cursor: sch.Cursor}
		}
		snap.Approvals = make([][]string, r.detector.Len())
		for i := range snap.Approvals {
			snap.Approvals[i] = r.detector.Approvers(i)
		}
		if idx, ok := r.detector.Match(); ok {
			snap.Match = &idx
		}
	}
	return snap
}

// restoreRoom rebuilds a room from a snapshot after checking its
// invariants.
func restoreRoom(snap models.RoomSnapshot, deps roomDeps) (*Room, error) {
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}

	r := newRoom(snap.ID, snap.Owner, snap.Params, deps)
	r.participants = slices.Clone(snap.Participants)
	r.options = slices.Clone(snap.Options)
	r.createdAt = snap.CreatedAt
	r.updatedAt = snap.UpdatedAt
	if r.updatedAt.IsZero() {
		r.updatedAt = deps.now()
	}

	if snap.Status == models.StatusVoting {
		r.status = models.StatusVoting
		r.detector = NewMatchDetector(len(snap.Options))
		r.detector.restore(snap.Approvals, snap.Match)
		for p, sch := range snap.Schedules {
			r.schedules[p] = &models.Schedule{Order: slices.Clone(sch.Order), Cursor: sch.Cursor}
		}
		close(r.started)
	}
	return r, nil
}

func validateSnapshot(snap models.RoomSnapshot) error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: room %s: %s", ErrInvalidSnapshot, snap.ID, fmt.Sprintf(format, args...))
	}

	if snap.ID == "" {
		return bad("empty id")
	}
	if len(snap.Participants) == 0 {
		return bad("no participants")
	}
	members := make(map[string]bool, len(snap.Participants))
	for _, p := range snap.Participants {
		if members[p] {
			return bad("duplicate participant %q", p)
		}
		members[p] = true
	}
	if !members[snap.Owner] {
		return bad("owner %q is not a participant", snap.Owner)
	}

	switch snap.Status {
	case models.StatusOpen:
		if len(snap.Approvals) != 0 || len(snap.Schedules) != 0 || snap.Match != nil {
			return bad("open room carries voting state")
		}
		return nil
	case models.StatusVoting:
	default:
		return bad("unexpected status %q", snap.Status)
	}

	n := len(snap.Options)
	if n == 0 {
		return bad("voting room has no options")
	}
	if len(snap.Approvals) != n {
		return bad("%d approval sets for %d options", len(snap.Approvals), n)
	}
	for i, approvers := range snap.Approvals {
		for _, p := range approvers {
			if !members[p] {
				return bad("option %d approved by non-member %q", i, p)
			}
		}
	}
	if len(snap.Schedules) != len(snap.Participants) {
		return bad("%d schedules for %d participants", len(snap.Schedules), len(snap.Participants))
	}
	for p, sch := range snap.Schedules {
		if !members[p] {
			return bad("schedule for non-member %q", p)
		}
		if !isPermutation(sch.Order, n) {
			return bad("schedule for %q is not a permutation of %d options", p, n)
		}
		if sch.Cursor < 0 || sch.Cursor >= n {
			return bad("cursor %d for %q out of range", sch.Cursor, p)
		}
	}
	if snap.Match != nil && (*snap.Match < 0 || *snap.Match >= n) {
		return bad("match %d out of range", *snap.Match)
	}
	return nil
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

func validateEntry(e models.Entry) error {
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}
	if r := e.Rating; r != nil && !(*r >= 0 && *r <= 1) {
		return fmt.Errorf("%w: rating must be between 0 and 1", ErrInvalidEntry)
	}
	return nil
}
