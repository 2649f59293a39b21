// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/DevDaysSpring2024-29/project/models"
	"github.com/DevDaysSpring2024-29/project/providers"
)

// recordingStore keeps the latest snapshot per room.
type recordingStore struct {
	mu      sync.Mutex
	saved   map[string]models.RoomSnapshot
	deleted []string
	saves   int
	failOn  error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{saved: make(map[string]models.RoomSnapshot)}
}

func (s *recordingStore) SaveRoom(ctx context.Context, snap models.RoomSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.failOn != nil {
		return s.failOn
	}
	s.saved[snap.ID] = snap
	return nil
}

func (s *recordingStore) DeleteRoom(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, roomID)
	s.deleted = append(s.deleted, roomID)
	return nil
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sequenceIDs(ids ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i%len(ids)]
		i++
		return id, nil
	}
}

func TestCreateRoom(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		provider string
		wantErr  error
	}{
		{"catalog provider", providers.NameDummy, nil},
		{"custom", providers.Custom, nil},
		{"unknown provider", "horoscopes", ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := "owner-" + tt.name
			roomID, err := reg.CreateRoom(ctx, owner, models.RoomParams{ProviderName: tt.provider})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateRoom() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if _, err := reg.ResolveRoom(owner); !errors.Is(err, ErrNotInRoom) {
					t.Errorf("failed create should not index the owner")
				}
				return
			}

			room, err := reg.Room(roomID)
			if err != nil {
				t.Fatal(err)
			}
			if room.Owner() != owner || room.Status() != models.StatusOpen {
				t.Errorf("unexpected room state: owner=%q status=%q", room.Owner(), room.Status())
			}
			if got, _ := reg.ResolveRoom(owner); got != roomID {
				t.Errorf("owner resolves to %q, want %q", got, roomID)
			}
		})
	}
}

func TestCreateRoomRetriesIssuedIDs(t *testing.T) {
	reg, _ := newTestRegistry(t, WithIDGenerator(sequenceIDs("AAAAAA", "AAAAAA", "BBBBBB")))
	ctx := context.Background()

	first, err := reg.CreateRoom(ctx, "A", models.RoomParams{ProviderName: providers.Custom})
	if err != nil {
		t.Fatal(err)
	}
	second, err := reg.CreateRoom(ctx, "B", models.RoomParams{ProviderName: providers.Custom})
	if err != nil {
		t.Fatal(err)
	}
	if first != "AAAAAA" || second != "BBBBBB" {
		t.Errorf("got ids %q and %q", first, second)
	}

	// disposed ids are never handed out again
	if err := reg.LeaveRoom(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	stuck, _ := newTestRegistry(t, WithIDGenerator(sequenceIDs("AAAAAA")))
	if _, err := stuck.CreateRoom(ctx, "X", models.RoomParams{ProviderName: providers.Custom}); err != nil {
		t.Fatal(err)
	}
	if err := stuck.LeaveRoom(ctx, "X"); err != nil {
		t.Fatal(err)
	}
	if _, err := stuck.CreateRoom(ctx, "X", models.RoomParams{ProviderName: providers.Custom}); err == nil {
		t.Error("expected allocation failure once every candidate id was issued")
	}
}

func TestJoinRoom(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	roomID := setupRoom(t, reg, "A")

	if err := reg.JoinRoom(ctx, "B", "NOPE00"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
	if err := reg.JoinRoom(ctx, "B", roomID); err != nil {
		t.Fatal(err)
	}
	// joining again is a no-op
	if err := reg.JoinRoom(ctx, "B", roomID); err != nil {
		t.Fatal(err)
	}

	room, _ := reg.Room(roomID)
	if got := room.Participants(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("participants = %v", got)
	}
}

func TestJoinAnotherRoomLeavesCurrent(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	first := setupRoom(t, reg, "A", "B")
	second := setupRoom(t, reg, "C")

	if err := reg.JoinRoom(ctx, "B", second); err != nil {
		t.Fatal(err)
	}

	if got, _ := reg.ResolveRoom("B"); got != second {
		t.Errorf("B resolves to %q, want %q", got, second)
	}
	room, _ := reg.Room(first)
	if got := room.Participants(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("first room participants = %v", got)
	}

	// creating a room also leaves the current one, disposing it when empty
	if _, err := reg.CreateRoom(ctx, "A", models.RoomParams{ProviderName: providers.Custom}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Room(first); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("emptied room should be disposed, got %v", err)
	}
}

func TestLeaveRoomHandsOffOwnership(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	roomID := setupRoom(t, reg, "A", "B", "C")
	room, _ := reg.Room(roomID)

	events, cancel := room.Subscribe()
	defer cancel()

	if err := reg.LeaveRoom(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	if room.Owner() != "B" {
		t.Errorf("owner = %q, want B", room.Owner())
	}
	for _, kind := range []string{models.EventLeft, models.EventOwnerChanged} {
		if ev := <-events; ev.Kind != kind {
			t.Errorf("expected %s, got %s", kind, ev.Kind)
		}
	}

	if err := reg.StartVote(ctx, "B"); err != nil {
		t.Errorf("new owner should be able to start: %v", err)
	}
	if err := reg.LeaveRoom(ctx, "A"); !errors.Is(err, ErrNotInRoom) {
		t.Errorf("expected ErrNotInRoom, got %v", err)
	}
}

func TestLastLeaveDisposesRoom(t *testing.T) {
	store := newRecordingStore()
	reg, _ := newTestRegistry(t, WithStore(store))
	ctx := context.Background()
	roomID := setupRoom(t, reg, "A", "B")
	room, _ := reg.Room(roomID)

	events, _ := room.Subscribe()

	waitErr := make(chan error, 1)
	go func() { waitErr <- room.WaitVoting(ctx) }()

	for _, p := range []string{"A", "B"} {
		if err := reg.LeaveRoom(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	if reg.Len() != 0 {
		t.Errorf("expected no rooms, got %d", reg.Len())
	}
	if room.Status() != models.StatusClosed {
		t.Errorf("status = %q, want closed", room.Status())
	}
	if err := <-waitErr; !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("waiter should see ErrRoomNotFound, got %v", err)
	}

	var last models.Event
	for ev := range events {
		last = ev
	}
	if last.Kind != models.EventClosed {
		t.Errorf("last event = %q, want closed", last.Kind)
	}

	if _, ok := store.saved[roomID]; ok {
		t.Error("snapshot should be deleted")
	}
	if !reflect.DeepEqual(store.deleted, []string{roomID}) {
		t.Errorf("deleted = %v", store.deleted)
	}
}

func TestStoreMirrorsMutations(t *testing.T) {
	store := newRecordingStore()
	reg, _ := newTestRegistry(t, WithStore(store))
	roomID := startedRoom(t, reg, "A", "B")
	mustVote(t, reg, "A", true)

	saved, ok := store.saved[roomID]
	if !ok {
		t.Fatal("room was never saved")
	}
	room, _ := reg.Room(roomID)
	if !reflect.DeepEqual(saved, room.Snapshot()) {
		t.Errorf("stored snapshot is stale:\n got %+v\nwant %+v", saved, room.Snapshot())
	}
	// create, join, start, vote
	if store.saves != 4 {
		t.Errorf("saves = %d, want 4", store.saves)
	}
}

func TestStoreFailureDoesNotFailMutation(t *testing.T) {
	store := newRecordingStore()
	store.failOn = errors.New("disk full")
	reg, _ := newTestRegistry(t, WithStore(store))

	startedRoom(t, reg, "A", "B")
	mustVote(t, reg, "A", true)
	if m := mustVote(t, reg, "B", true); m == nil {
		t.Error("expected a match despite store errors")
	}
}

func TestWaitVoting(t *testing.T) {
	t.Run("returns once voting starts", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		setupRoom(t, reg, "A", "B")

		done := make(chan error, 1)
		go func() { done <- reg.WaitVoting(context.Background(), "B") }()

		if err := reg.StartVote(context.Background(), "A"); err != nil {
			t.Fatal(err)
		}
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("WaitVoting() = %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("WaitVoting did not return")
		}

		// already voting returns immediately
		if err := reg.WaitVoting(context.Background(), "B"); err != nil {
			t.Errorf("WaitVoting() after start = %v", err)
		}
	})

	t.Run("honors context", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		setupRoom(t, reg, "A")

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := reg.WaitVoting(ctx, "A"); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected DeadlineExceeded, got %v", err)
		}
	})

	t.Run("not in room", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		if err := reg.WaitVoting(context.Background(), "nobody"); !errors.Is(err, ErrNotInRoom) {
			t.Errorf("expected ErrNotInRoom, got %v", err)
		}
	})
}

func TestCloseRoom(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	roomID := startedRoom(t, reg, "A", "B")
	room, _ := reg.Room(roomID)

	if err := reg.CloseRoom(ctx, roomID); err != nil {
		t.Fatal(err)
	}
	if err := reg.CloseRoom(ctx, roomID); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("second close: expected ErrRoomNotFound, got %v", err)
	}
	for _, p := range []string{"A", "B"} {
		if _, err := reg.ResolveRoom(p); !errors.Is(err, ErrNotInRoom) {
			t.Errorf("%s still indexed", p)
		}
	}

	// a stale handle reports the room as gone
	if _, _, err := room.CurrentOption("A"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
	if _, err := room.Vote(ctx, "A", true); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
	if err := room.StartVote(ctx, "A"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}

	events, _ := room.Subscribe()
	if _, ok := <-events; ok {
		t.Error("subscribing to a closed room should yield a closed channel")
	}
}

func TestSweepIdle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	reg, _ := newTestRegistry(t, WithClock(clock.Now))
	ctx := context.Background()

	stale := setupRoom(t, reg, "A")
	clock.Advance(90 * time.Minute)
	fresh := setupRoom(t, reg, "B")
	clock.Advance(45 * time.Minute)

	if n := reg.SweepIdle(ctx, time.Hour); n != 1 {
		t.Fatalf("SweepIdle() = %d, want 1", n)
	}
	if _, err := reg.Room(stale); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("stale room survived: %v", err)
	}
	if _, err := reg.Room(fresh); err != nil {
		t.Errorf("fresh room was closed: %v", err)
	}

	// activity resets the idle clock
	if err := reg.JoinRoom(ctx, "C", fresh); err != nil {
		t.Fatal(err)
	}
	clock.Advance(30 * time.Minute)
	if n := reg.SweepIdle(ctx, time.Hour); n != 0 {
		t.Errorf("SweepIdle() = %d, want 0", n)
	}
}
