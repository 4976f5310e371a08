package calls

import "testing"

func TestStatus_TerminalStatesAreFrozen(t *testing.T) {
	terminals := []Status{StatusEnded, StatusRejected, StatusMissed, StatusCancelled}
	all := []Status{
		StatusInitiated, StatusRinging, StatusOngoing, StatusEnded,
		StatusRejected, StatusMissed, StatusCancelled,
	}
	for _, from := range terminals {
		if !from.IsTerminal() {
			t.Fatalf("%s should be terminal", from)
		}
		for _, to := range all {
			if from.CanTransitionTo(to) {
				t.Fatalf("terminal %s must not transition to %s", from, to)
			}
		}
	}
}

func TestStatus_InitiatedTransitions(t *testing.T) {
	allowed := []Status{StatusRinging, StatusOngoing, StatusRejected, StatusMissed, StatusCancelled}
	for _, to := range allowed {
		if !StatusInitiated.CanTransitionTo(to) {
			t.Fatalf("initiated -> %s should be legal", to)
		}
	}
	if StatusInitiated.CanTransitionTo(StatusEnded) {
		t.Fatalf("initiated -> ended must be illegal")
	}
	if StatusInitiated.CanTransitionTo(StatusInitiated) {
		t.Fatalf("initiated -> initiated must be illegal")
	}
}

func TestStatus_RingingMirrorsInitiated(t *testing.T) {
	allowed := []Status{StatusOngoing, StatusRejected, StatusMissed, StatusCancelled}
	for _, to := range allowed {
		if !StatusRinging.CanTransitionTo(to) {
			t.Fatalf("ringing -> %s should be legal", to)
		}
	}
	if StatusRinging.CanTransitionTo(StatusRinging) {
		t.Fatalf("ringing -> ringing must be illegal")
	}
	if StatusRinging.CanTransitionTo(StatusEnded) {
		t.Fatalf("ringing -> ended must be illegal")
	}
}

func TestStatus_OngoingOnlyEnds(t *testing.T) {
	if !StatusOngoing.CanTransitionTo(StatusEnded) {
		t.Fatalf("ongoing -> ended should be legal")
	}
	for _, to := range []Status{StatusInitiated, StatusRinging, StatusRejected, StatusMissed, StatusCancelled} {
		if StatusOngoing.CanTransitionTo(to) {
			t.Fatalf("ongoing -> %s must be illegal", to)
		}
	}
}

func TestCallRecord_IsParticipant(t *testing.T) {
	r := CallRecord{InitiatorID: "a", ReceiverID: "b"}
	if !r.IsParticipant("a") || !r.IsParticipant("b") {
		t.Fatalf("both sides should be participants")
	}
	if r.IsParticipant("c") || r.IsParticipant("") {
		t.Fatalf("outsiders must not be participants")
	}
}

func TestEnums_Validity(t *testing.T) {
	if !CallTypeVideo.IsValid() || !CallTypeAudio.IsValid() || !CallTypeScreen.IsValid() {
		t.Fatalf("known call types should validate")
	}
	if CallType("hologram").IsValid() {
		t.Fatalf("unknown call type should not validate")
	}
	if DisconnectReason("boredom").IsValid() {
		t.Fatalf("unknown disconnect reason should not validate")
	}
	if Quality("legendary").IsValid() {
		t.Fatalf("unknown quality should not validate")
	}
	if Status("paused").IsValid() {
		t.Fatalf("unknown status should not validate")
	}
}
