package signaling

import "testing"

func TestParseClientEnvelope(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid offer", `{"type":"offer","roomId":"r1","payload":{"sdp":"v=0"}}`, false},
		{"valid join without payload", `{"type":"join","roomId":"r1"}`, false},
		{"valid toggle without payload", `{"type":"audio-toggled","roomId":"r1"}`, false},
		{"malformed json", `{"type":`, true},
		{"unknown type", `{"type":"teleport","roomId":"r1"}`, true},
		{"server-only type", `{"type":"user-joined","roomId":"r1"}`, true},
		{"missing room", `{"type":"offer","payload":{}}`, true},
		{"offer without payload", `{"type":"offer","roomId":"r1"}`, true},
		{"ice without payload", `{"type":"ice-candidate","roomId":"r1"}`, true},
		{"screen-answer without payload", `{"type":"screen-answer","roomId":"r1"}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseClientEnvelope([]byte(tc.raw))
			if tc.wantErr && err == nil {
				t.Fatalf("expected error for %s", tc.raw)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseClientEnvelope_PreservesFields(t *testing.T) {
	raw := `{"type":"screen-offer","roomId":"r9","mediaType":"screen","payload":{"sdp":"v=0"}}`
	env, err := ParseClientEnvelope([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Type != EventScreenOffer || env.RoomID != "r9" || env.MediaType != "screen" {
		t.Fatalf("fields not preserved: %+v", env)
	}
	if len(env.Payload) == 0 {
		t.Fatalf("payload dropped")
	}
}
