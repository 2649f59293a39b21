// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine implements the room and voting core: rooms, per-participant
schedules, match detection, and the registry that owns them.

# Lifecycle

A room is created by its owner in the open state. Participants join while
it is open; the owner may add manual entries. StartVote fixes the option
list (manual entries first, then provider results shuffled once) and moves
the room to voting. From then on each participant swipes through their own
schedule:

	open ──StartVote──> voting ──last leave / CloseRoom / SweepIdle──> closed
	  └──────────────last leave / CloseRoom / SweepIdle───────────────┘

Closed rooms are removed from the registry and their ids are never reused.

# Scheduling

Scheduler splits the option indices into chunks of ChunkSize and shuffles
each chunk independently, so higher ranked options stay near the front
while participants see different orders. When a participant's cursor runs
past the last option the schedule is regenerated and their approvals are
purged.

# Matching

MatchDetector keeps one approval set per option. An option matches when
its set reaches the number of current participants. The first match is
sticky until ResetMatch. Leaving removes the participant's approvals but
does not evaluate a match; the lowered quorum applies from the next vote.

# Concurrency

Each Room has its own RWMutex held for the whole of every mutation,
including the provider fetch in StartVote. The Registry mutex guards only
its maps. Lock order is room then registry:

	room.mu.Lock()
	reg.mu.Lock()   // index update only
	reg.mu.Unlock()
	room.mu.Unlock()

WaitVoting blocks on channels closed at the open to voting transition and
at disposal, and honors context cancellation.

# Persistence

A Store, if configured, receives a snapshot after every mutation and a
delete on disposal, both under the room lock. Store errors are logged and
never fail the mutation. Registry.Restore rebuilds rooms from snapshots.
*/
package engine
