// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DevDaysSpring2024-29/project/models"
	"github.com/DevDaysSpring2024-29/project/providers"
)

// checkRegistry verifies that the participant index and the rooms agree and
// that every live room passes snapshot validation.
func checkRegistry(t *testing.T, reg *Registry) {
	t.Helper()

	reg.mu.Lock()
	rooms := make(map[string]*Room, len(reg.rooms))
	for id, room := range reg.rooms {
		rooms[id] = room
	}
	members := make(map[string]string, len(reg.members))
	for p, id := range reg.members {
		members[p] = id
	}
	reg.mu.Unlock()

	for p, id := range members {
		room, ok := rooms[id]
		if !ok {
			t.Errorf("%s indexed to missing room %s", p, id)
			continue
		}
		if !slices.Contains(room.Participants(), p) {
			t.Errorf("%s indexed to %s but not a participant", p, id)
		}
	}
	for id, room := range rooms {
		snap := room.Snapshot()
		if err := validateSnapshot(snap); err != nil {
			t.Errorf("room %s: %v", id, err)
		}
		for _, p := range snap.Participants {
			if members[p] != id {
				t.Errorf("%s in room %s but indexed to %q", p, id, members[p])
			}
		}
	}
}

func TestJoinWaitsForProviderFetch(t *testing.T) {
	reg, cat := newTestRegistry(t)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	cat.Register("slow", providers.ProviderFunc(func(ctx context.Context, req models.FetchRequest) ([]models.Entry, error) {
		close(entered)
		<-release
		return []models.Entry{{Name: "late"}}, nil
	}))

	roomID, err := reg.CreateRoom(ctx, "A", models.RoomParams{ProviderName: "slow"})
	if err != nil {
		t.Fatal(err)
	}

	startErr := make(chan error, 1)
	go func() { startErr <- reg.StartVote(ctx, "A") }()
	<-entered

	joinErr := make(chan error, 1)
	go func() { joinErr <- reg.JoinRoom(ctx, "B", roomID) }()

	select {
	case err := <-joinErr:
		t.Fatalf("join returned during the fetch: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	if err := <-startErr; err != nil {
		t.Fatalf("StartVote failed: %v", err)
	}
	if err := <-joinErr; !errors.Is(err, ErrAlreadyVoting) {
		t.Errorf("expected ErrAlreadyVoting, got %v", err)
	}

	room, _ := reg.Room(roomID)
	snap := room.Snapshot()
	if len(snap.Participants) != 1 || len(snap.Schedules) != 1 {
		t.Errorf("B must not be half-joined: %+v", snap)
	}
}

func TestConcurrentVotersAgree(t *testing.T) {
	const voters = 20

	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	roomID, err := reg.CreateRoom(ctx, "voter-0", models.RoomParams{
		ProviderName: providers.NameDummy,
		Filters:      models.Filters{"count": "5"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < voters; i++ {
		if err := reg.JoinRoom(ctx, fmt.Sprintf("voter-%d", i), roomID); err != nil {
			t.Fatal(err)
		}
	}
	if err := reg.StartVote(ctx, "voter-0"); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var matches atomic.Int32
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			for j := 0; j < 4; j++ {
				m, err := reg.Vote(ctx, p, true)
				if err != nil {
					t.Errorf("Vote(%s) failed: %v", p, err)
					return
				}
				if m != nil {
					matches.Add(1)
				}
			}
		}(fmt.Sprintf("voter-%d", i))
	}
	wg.Wait()

	if matches.Load() == 0 {
		t.Fatal("no voter observed a match")
	}
	for i := 0; i < voters; i++ {
		m, err := reg.GetMatch(fmt.Sprintf("voter-%d", i))
		if err != nil {
			t.Fatal(err)
		}
		if m == nil || m.Name != "dummy entry 1" {
			t.Fatalf("voter-%d sees match %v, want dummy entry 1", i, m)
		}
	}
	checkRegistry(t, reg)
}

func TestConcurrentJoinLeaveVote(t *testing.T) {
	reg := NewRegistry(func() Catalog {
		cat := providers.NewRegistry()
		cat.Register(providers.NameDummy, providers.DummyProvider{Count: 6})
		return cat
	}())
	ctx := context.Background()

	var rooms []string
	for i := 0; i < 3; i++ {
		id, err := reg.CreateRoom(ctx, fmt.Sprintf("owner-%d", i), models.RoomParams{ProviderName: providers.NameDummy})
		if err != nil {
			t.Fatal(err)
		}
		rooms = append(rooms, id)
	}

	var wg sync.WaitGroup
	for w := 0; w < 12; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			p := fmt.Sprintf("p-%d", w)
			if w < len(rooms) {
				// owners churn too, so ownership moves around
				p = fmt.Sprintf("owner-%d", w)
			}
			for i := 0; i < 50; i++ {
				var err error
				switch rand.IntN(6) {
				case 0, 1:
					err = reg.JoinRoom(ctx, p, rooms[rand.IntN(len(rooms))])
				case 2:
					err = reg.LeaveRoom(ctx, p)
				case 3:
					_, err = reg.Vote(ctx, p, rand.IntN(2) == 0)
				case 4:
					err = reg.StartVote(ctx, p)
				case 5:
					_, _, err = reg.CurrentOption(p)
				}
				if err != nil && !isExpected(err) {
					t.Errorf("%s: unexpected error %v", p, err)
				}
			}
		}(w)
	}
	wg.Wait()

	checkRegistry(t, reg)
}

// orderedStore fails the test if a closed room is saved, or if a room is
// saved again after its snapshot was deleted.
type orderedStore struct {
	t       *testing.T
	mu      sync.Mutex
	deleted map[string]bool
}

func (s *orderedStore) SaveRoom(ctx context.Context, snap models.RoomSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Status != models.StatusOpen && snap.Status != models.StatusVoting {
		s.t.Errorf("room %s saved with status %q", snap.ID, snap.Status)
	}
	if s.deleted[snap.ID] {
		s.t.Errorf("room %s saved after it was deleted", snap.ID)
	}
	return nil
}

func (s *orderedStore) DeleteRoom(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted[roomID] = true
	return nil
}

func TestCreateRoomRacingLeave(t *testing.T) {
	store := &orderedStore{t: t, deleted: make(map[string]bool)}
	reg, _ := newTestRegistry(t, WithStore(store))
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		owner := fmt.Sprintf("owner-%d", w)
		for i := 0; i < 100; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				if _, err := reg.CreateRoom(ctx, owner, models.RoomParams{ProviderName: providers.Custom}); err != nil {
					t.Errorf("CreateRoom: %v", err)
				}
			}()
			go func() {
				defer wg.Done()
				if err := reg.LeaveRoom(ctx, owner); err != nil && !errors.Is(err, ErrNotInRoom) {
					t.Errorf("LeaveRoom: %v", err)
				}
			}()
		}
	}
	wg.Wait()

	checkRegistry(t, reg)
}

func isExpected(err error) bool {
	for _, target := range []error{
		ErrRoomNotFound, ErrNotInRoom, ErrParticipantNotFound, ErrForbidden,
		ErrAlreadyVoting, ErrNotVoting,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
