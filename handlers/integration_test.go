// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DevDaysSpring2024-29/project/db"
	"github.com/DevDaysSpring2024-29/project/engine"
	"github.com/DevDaysSpring2024-29/project/models"
	"github.com/DevDaysSpring2024-29/project/testutil"
)

// TestRoomsSurviveRestart runs half a session, rebuilds the registry from
// the snapshot store, and finishes the session on the new instance.
func TestRoomsSurviveRestart(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	store := db.NewSnapshotStore(conn, "sqlite")

	mux, _ := newTestMux(t, engine.WithStore(store))
	roomID := startedRoom(t, mux, "alice", "bob", "carol")
	vote(t, mux, "alice", true)
	vote(t, mux, "bob", true)

	snaps, err := store.LoadRooms(context.Background())
	if err != nil {
		t.Fatalf("LoadRooms failed: %v", err)
	}
	if len(snaps) != 1 || snaps[0].ID != roomID {
		t.Fatalf("Expected one stored room %s, got %+v", roomID, snaps)
	}

	restarted, reg := newTestMux(t, engine.WithStore(store))
	for _, snap := range snaps {
		if err := reg.Restore(snap); err != nil {
			t.Fatalf("Restore failed: %v", err)
		}
	}

	resp := vote(t, restarted, "carol", true)
	if resp.Match == nil || resp.Match.Name != "dummy entry 1" {
		t.Fatalf("Expected carol to complete the match, got %+v", resp.Match)
	}

	// a new room on the restarted instance never reuses the restored id
	newID := createRoom(t, restarted, "dave", "custom")
	if newID == roomID {
		t.Errorf("Room id %s was reused", roomID)
	}

	// leaving everyone out deletes the stored snapshot
	for _, p := range []string{"alice", "bob", "carol"} {
		w := testutil.Do(restarted, testutil.MakeRequest("POST", "/rooms/leave", p, nil))
		testutil.AssertStatus(t, w, http.StatusNoContent)
	}
	snaps, err = store.LoadRooms(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, snap := range snaps {
		if snap.ID == roomID {
			t.Errorf("Closed room %s is still stored", roomID)
		}
	}
}

// TestConcurrentVotes has every participant swipe at once over HTTP. All
// of them like the first option, so it must be the match.
func TestConcurrentVotes(t *testing.T) {
	const numParticipants = 10

	mux, _ := newTestMux(t)
	participants := make([]string, numParticipants)
	for i := range participants {
		participants[i] = fmt.Sprintf("voter-%d", i)
	}
	startedRoom(t, mux, participants...)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for _, p := range participants {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			w := testutil.Do(mux, testutil.MakeRequest("POST", "/rooms/me/votes", p, models.VoteRequest{Liked: true}))
			if w.Code != http.StatusOK {
				failures.Add(1)
			}
		}(p)
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d votes failed", failures.Load())
	}

	for _, p := range participants {
		w := testutil.Do(mux, testutil.MakeRequest("GET", "/rooms/me/match", p, nil))
		var match models.MatchResponse
		testutil.AssertJSON(t, w, &match)
		if match.Match == nil || match.Match.Name != "dummy entry 1" {
			t.Fatalf("%s sees match %+v, want dummy entry 1", p, match.Match)
		}
	}
}
