package audit

import (
	"context"
	"testing"
)

func TestService_AppendRequiresTypeAndCallID(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{Type: EventTypeStatusChanged}); err == nil {
		t.Fatalf("expected error for missing call id")
	}
	if err := svc.Append(context.Background(), Event{CallID: "c1"}); err == nil {
		t.Fatalf("expected error for missing type")
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogCallInitiated(context.Background(), "c1", "room-1", "alice", "{}"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := svc.LogStatusChange(context.Background(), "c1", "room-1", "bob", "initiated", "ongoing", "call accepted"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].Type != EventTypeCallInitiated || evs[0].ID == "" || evs[0].CreatedAt.IsZero() {
		t.Fatalf("initiated event not stamped: %+v", evs[0])
	}
	if evs[1].FromStatus != "initiated" || evs[1].ToStatus != "ongoing" {
		t.Fatalf("transition not captured: %+v", evs[1])
	}
}

func TestService_SystemEventsHaveNoActor(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogStatusChange(context.Background(), "c1", "room-1", "", "initiated", "missed", "ring timeout"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	evs := repo.Events()
	if len(evs) != 1 || evs[0].ActorUserID != "" || evs[0].ToStatus != "missed" {
		t.Fatalf("unexpected event %+v", evs)
	}
}
