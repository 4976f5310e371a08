package signaling

import (
	"sort"
	"testing"
)

func TestRegistry_JoinReportsCountAndRejoin(t *testing.T) {
	reg := NewRegistry()
	a := &Client{userID: "alice"}
	b := &Client{userID: "bob"}

	if n, rejoined := reg.Join("r1", a); n != 1 || rejoined {
		t.Fatalf("first join: got members=%d rejoined=%v", n, rejoined)
	}
	if n, rejoined := reg.Join("r1", b); n != 2 || rejoined {
		t.Fatalf("second join: got members=%d rejoined=%v", n, rejoined)
	}
	if n, rejoined := reg.Join("r1", a); n != 2 || !rejoined {
		t.Fatalf("rejoin: got members=%d rejoined=%v", n, rejoined)
	}
}

func TestRegistry_OthersExcludesSender(t *testing.T) {
	reg := NewRegistry()
	a := &Client{userID: "alice"}
	b := &Client{userID: "bob"}
	c := &Client{userID: "carol"}
	reg.Join("r1", a)
	reg.Join("r1", b)
	reg.Join("r1", c)

	others := reg.Others("r1", a)
	if len(others) != 2 {
		t.Fatalf("expected 2 others, got %d", len(others))
	}
	for _, o := range others {
		if o == a {
			t.Fatalf("sender included in its own recipients")
		}
	}
	if got := reg.Others("r1", a); got == nil {
		t.Fatalf("non-empty room should never return nil recipients")
	}
	if got := reg.Others("nowhere", a); got != nil {
		t.Fatalf("unknown room should return nil, got %v", got)
	}
}

func TestRegistry_LeaveRemovesEmptyRoom(t *testing.T) {
	reg := NewRegistry()
	a := &Client{userID: "alice"}
	reg.Join("r1", a)
	reg.Leave("r1", a)

	if n := reg.Members("r1"); n != 0 {
		t.Fatalf("expected 0 members, got %d", n)
	}
	if rooms := reg.Rooms(a); len(rooms) != 0 {
		t.Fatalf("expected no joined rooms, got %v", rooms)
	}
	// Leaving twice is harmless.
	reg.Leave("r1", a)
}

func TestRegistry_DropAllReturnsFormerRooms(t *testing.T) {
	reg := NewRegistry()
	a := &Client{userID: "alice"}
	b := &Client{userID: "bob"}
	reg.Join("r1", a)
	reg.Join("r2", a)
	reg.Join("r2", b)

	rooms := reg.DropAll(a)
	sort.Strings(rooms)
	if len(rooms) != 2 || rooms[0] != "r1" || rooms[1] != "r2" {
		t.Fatalf("expected [r1 r2], got %v", rooms)
	}
	if n := reg.Members("r2"); n != 1 {
		t.Fatalf("r2 should keep bob, got %d members", n)
	}
	if got := reg.DropAll(a); len(got) != 0 {
		t.Fatalf("second drop should return nothing, got %v", got)
	}
}
