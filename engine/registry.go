// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/DevDaysSpring2024-29/project/auth"
	"github.com/DevDaysSpring2024-29/project/models"
	"github.com/DevDaysSpring2024-29/project/providers"
)

const maxIDAttempts = 32

// Catalog resolves a room's provider name. *providers.Registry satisfies it.
type Catalog interface {
	Lookup(name string) (providers.Provider, bool)
}

// Store mirrors room snapshots. Failures are logged, never returned to the
// caller of the mutation that triggered them.
type Store interface {
	SaveRoom(ctx context.Context, snap models.RoomSnapshot) error
	DeleteRoom(ctx context.Context, roomID string) error
}

type Option func(*Registry)

// WithChunkSize sets the scheduler chunk size.
func WithChunkSize(n int) Option {
	return func(r *Registry) { r.chunkSize = n }
}

// WithShuffle replaces the random source used for schedules and provider
// results. Tests use it for deterministic orders.
func WithShuffle(fn ShuffleFunc) Option {
	return func(r *Registry) { r.shuffle = fn }
}

func WithStore(s Store) Option {
	return func(r *Registry) { r.store = s }
}

func WithIDGenerator(fn func() (string, error)) Option {
	return func(r *Registry) { r.newID = fn }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Registry owns every live room and the participant -> room index.
//
// Lock order is room.mu before r.mu. r.mu is only ever held for map
// operations and is never held while waiting for a room lock.
type Registry struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	members map[string]string // participant -> room id
	issued  map[string]struct{}

	catalog   Catalog
	scheduler *Scheduler
	store     Store
	newID     func() (string, error)
	now       func() time.Time

	chunkSize int
	shuffle   ShuffleFunc
}

func NewRegistry(catalog Catalog, opts ...Option) *Registry {
	r := &Registry{
		rooms:   make(map[string]*Room),
		members: make(map[string]string),
		issued:  make(map[string]struct{}),
		catalog: catalog,
		newID:   auth.GenerateRoomCode,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.scheduler = NewScheduler(r.chunkSize, r.shuffle)
	return r
}

func (r *Registry) deps() roomDeps {
	return roomDeps{catalog: r.catalog, scheduler: r.scheduler, store: r.store, now: r.now}
}

// CreateRoom opens a new room owned by owner. If owner is already in a room
// they leave it first. The provider is only resolved here, not contacted.
func (r *Registry) CreateRoom(ctx context.Context, owner string, params models.RoomParams) (string, error) {
	if params.ProviderName != providers.Custom {
		if _, ok := r.catalog.Lookup(params.ProviderName); !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownProvider, params.ProviderName)
		}
	}

	for {
		if err := r.leaveCurrent(ctx, owner); err != nil {
			return "", err
		}

		r.mu.Lock()
		if _, busy := r.members[owner]; busy {
			// joined somewhere concurrently; leave again
			r.mu.Unlock()
			continue
		}
		id, err := r.allocateIDLocked()
		if err != nil {
			r.mu.Unlock()
			return "", err
		}
		room := newRoom(id, owner, params, r.deps())
		// The room is unreachable until published, so this never waits.
		// Holding it until the first save keeps a concurrent leave from
		// closing the room before it is stored.
		room.mu.Lock()
		r.rooms[id] = room
		r.members[owner] = id
		r.mu.Unlock()

		room.changedLocked(ctx)
		room.mu.Unlock()

		slog.Info("room created", "room_id", id, "owner", owner, "provider", params.ProviderName)
		return id, nil
	}
}

// allocateIDLocked returns an id never issued by this registry.
func (r *Registry) allocateIDLocked() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := r.newID()
		if err != nil {
			return "", err
		}
		if _, taken := r.issued[id]; taken {
			continue
		}
		r.issued[id] = struct{}{}
		return id, nil
	}
	return "", errors.New("failed to allocate a unique room id")
}

// JoinRoom adds participant to an open room. A participant already in
// another room leaves it first; joining the current room again is a no-op.
func (r *Registry) JoinRoom(ctx context.Context, participant, roomID string) error {
	for {
		room, err := r.Room(roomID)
		if err != nil {
			return err
		}

		current, inRoom := r.lookupMember(participant)
		if inRoom && current == roomID {
			return nil
		}
		// fail before leaving the old room when the join cannot succeed
		switch room.Status() {
		case models.StatusClosed:
			return ErrRoomNotFound
		case models.StatusVoting:
			return ErrAlreadyVoting
		}
		if inRoom {
			if err := r.leaveCurrent(ctx, participant); err != nil {
				return err
			}
			continue
		}

		retry, err := r.join(ctx, room, participant)
		if retry {
			continue
		}
		return err
	}
}

func (r *Registry) join(ctx context.Context, room *Room, participant string) (retry bool, err error) {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.hasLocked(participant) {
		return false, nil
	}
	switch room.status {
	case models.StatusClosed:
		return false, ErrRoomNotFound
	case models.StatusVoting:
		return false, ErrAlreadyVoting
	}

	r.mu.Lock()
	if _, busy := r.members[participant]; busy {
		r.mu.Unlock()
		return true, nil
	}
	r.members[participant] = room.id
	r.mu.Unlock()

	room.addLocked(participant)
	slog.Info("participant joined", "room_id", room.id, "participant", participant, "participants", len(room.participants))
	room.publishLocked(models.EventJoined, participant, nil)
	room.changedLocked(ctx)
	return false, nil
}

// LeaveRoom removes participant from their room, including their schedule
// and every approval they gave. No match is evaluated here; the smaller
// quorum applies from the next vote. The owner's role passes to the
// earliest remaining member, and an emptied room is disposed.
func (r *Registry) LeaveRoom(ctx context.Context, participant string) error {
	for {
		r.mu.Lock()
		roomID, ok := r.members[participant]
		room := r.rooms[roomID]
		r.mu.Unlock()

		if !ok || room == nil {
			return ErrNotInRoom
		}

		retry, err := r.leave(ctx, room, participant)
		if retry {
			continue
		}
		return err
	}
}

func (r *Registry) leave(ctx context.Context, room *Room, participant string) (retry bool, err error) {
	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.hasLocked(participant) {
		// index moved between lookup and lock
		return true, nil
	}

	newOwner, empty := room.removeLocked(participant)

	r.mu.Lock()
	if r.members[participant] == room.id {
		delete(r.members, participant)
	}
	if empty {
		delete(r.rooms, room.id)
	}
	r.mu.Unlock()

	slog.Info("participant left", "room_id", room.id, "participant", participant, "participants", len(room.participants))
	room.publishLocked(models.EventLeft, participant, nil)

	if empty {
		slog.Info("room closed", "room_id", room.id, "reason", "empty")
		room.closeLocked(ctx)
		return false, nil
	}
	if newOwner != "" {
		slog.Info("room owner changed", "room_id", room.id, "owner", newOwner)
		room.publishLocked(models.EventOwnerChanged, newOwner, nil)
	}
	room.changedLocked(ctx)
	return false, nil
}

func (r *Registry) leaveCurrent(ctx context.Context, participant string) error {
	if _, ok := r.lookupMember(participant); !ok {
		return nil
	}
	if err := r.LeaveRoom(ctx, participant); err != nil && !errors.Is(err, ErrNotInRoom) {
		return err
	}
	return nil
}

func (r *Registry) lookupMember(participant string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.members[participant]
	return id, ok
}

// ResolveRoom returns the id of the room participant is in.
func (r *Registry) ResolveRoom(participant string) (string, error) {
	id, ok := r.lookupMember(participant)
	if !ok {
		return "", ErrNotInRoom
	}
	return id, nil
}

// Room returns a live room by id.
func (r *Registry) Room(roomID string) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// RoomOf returns the room participant is in.
func (r *Registry) RoomOf(participant string) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.members[participant]
	if !ok {
		return nil, ErrNotInRoom
	}
	room, ok := r.rooms[id]
	if !ok {
		return nil, ErrNotInRoom
	}
	return room, nil
}

// Participant-scoped operations resolve the caller's room and delegate.

func (r *Registry) StartVote(ctx context.Context, participant string) error {
	room, err := r.RoomOf(participant)
	if err != nil {
		return err
	}
	return room.StartVote(ctx, participant)
}

func (r *Registry) AddEntry(ctx context.Context, participant string, entry models.Entry) error {
	room, err := r.RoomOf(participant)
	if err != nil {
		return err
	}
	return room.AddEntry(ctx, participant, entry)
}

func (r *Registry) CurrentOption(participant string) (models.Entry, *models.Entry, error) {
	room, err := r.RoomOf(participant)
	if err != nil {
		return models.Entry{}, nil, err
	}
	return room.CurrentOption(participant)
}

func (r *Registry) Vote(ctx context.Context, participant string, liked bool) (*models.Entry, error) {
	room, err := r.RoomOf(participant)
	if err != nil {
		return nil, err
	}
	return room.Vote(ctx, participant, liked)
}

func (r *Registry) GetMatch(participant string) (*models.Entry, error) {
	room, err := r.RoomOf(participant)
	if err != nil {
		return nil, err
	}
	return room.GetMatch(participant)
}

func (r *Registry) ResetMatch(ctx context.Context, participant string) error {
	room, err := r.RoomOf(participant)
	if err != nil {
		return err
	}
	return room.ResetMatch(ctx, participant)
}

// WaitVoting blocks until participant's room starts voting.
func (r *Registry) WaitVoting(ctx context.Context, participant string) error {
	room, err := r.RoomOf(participant)
	if err != nil {
		return err
	}
	return room.WaitVoting(ctx)
}

// CloseRoom disposes a room and drops its members from the index.
func (r *Registry) CloseRoom(ctx context.Context, roomID string) error {
	room, err := r.Room(roomID)
	if err != nil {
		return err
	}
	if !r.dispose(ctx, room, "explicit", nil) {
		return ErrRoomNotFound
	}
	return nil
}

// SweepIdle closes rooms that have not changed for maxIdle and returns how
// many were closed.
func (r *Registry) SweepIdle(ctx context.Context, maxIdle time.Duration) int {
	r.mu.Lock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	closed := 0
	for _, room := range rooms {
		idle := func(room *Room) bool {
			return !room.updatedAt.After(cutoff)
		}
		if r.dispose(ctx, room, "idle", idle) {
			closed++
		}
	}
	return closed
}

// dispose closes room if it is still live and cond (checked under the room
// lock) allows it.
func (r *Registry) dispose(ctx context.Context, room *Room, reason string, cond func(*Room) bool) bool {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.status == models.StatusClosed {
		return false
	}
	if cond != nil && !cond(room) {
		return false
	}

	r.mu.Lock()
	for _, p := range room.participants {
		if r.members[p] == room.id {
			delete(r.members, p)
		}
	}
	delete(r.rooms, room.id)
	r.mu.Unlock()

	slog.Info("room closed", "room_id", room.id, "reason", reason,
		"last_activity", humanize.Time(room.updatedAt))
	room.closeLocked(ctx)
	return true
}

// Restore re-inserts a room from a snapshot, e.g. at start-up.
func (r *Registry) Restore(snap models.RoomSnapshot) error {
	room, err := restoreRoom(snap, r.deps())
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[snap.ID]; exists {
		return fmt.Errorf("%w: room %s already exists", ErrInvalidSnapshot, snap.ID)
	}
	for _, p := range snap.Participants {
		if other, ok := r.members[p]; ok {
			return fmt.Errorf("%w: participant %q already in room %s", ErrInvalidSnapshot, p, other)
		}
	}

	r.rooms[snap.ID] = room
	r.issued[snap.ID] = struct{}{}
	for _, p := range snap.Participants {
		r.members[p] = snap.ID
	}
	return nil
}

// Len is the number of live rooms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
