package gateway

import (
	"testing"

	"github.com/riftcord/corebot/json"
)

// TestFrameRoundTrip checks that a dispatch frame with a payload, sequence
// number and event name survives an encode/decode cycle unchanged.
func TestFrameRoundTrip(t *testing.T) {
	seq := int64(42)
	f := Frame{
		Op:   DispatchOp,
		Data: json.Raw(`{"foo":"bar"}`),
		Seq:  &seq,
		Name: "GUILD_CREATE",
	}

	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Frame
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Op != f.Op || got.Name != f.Name || string(got.Data) != string(f.Data) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, f)
	}
	if got.Seq == nil || *got.Seq != seq {
		t.Fatalf("sequence not preserved: got %v, want %d", got.Seq, seq)
	}
}

func TestHeartbeatCommandMarshalsBareValue(t *testing.T) {
	seq := int64(7)
	b, err := json.Marshal(HeartbeatCommand{Sequence: &seq})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != "7" {
		t.Fatalf("expected bare integer 7, got %q", b)
	}

	b, err = json.Marshal(HeartbeatCommand{})
	if err != nil {
		t.Fatalf("Marshal nil seq: %v", err)
	}
	if string(b) != "null" {
		t.Fatalf("expected null, got %q", b)
	}
}

func TestInvalidSessionEventUnmarshal(t *testing.T) {
	var e InvalidSessionEvent
	if err := json.Unmarshal([]byte("true"), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !e.Resumable {
		t.Fatal("expected Resumable=true")
	}

	var e2 InvalidSessionEvent
	json.Unmarshal([]byte("false"), &e2)
	if e2.Resumable {
		t.Fatal("expected Resumable=false")
	}
}

// TestNewEventUnknownFallsBack checks that NewEvent reports an unrecognized
// "t" as unknown (ok=false) instead of failing, which is what lets the
// dispatcher fall back to *UnknownEvent, while a known name still yields its
// typed event.
func TestNewEventUnknownFallsBack(t *testing.T) {
	if _, ok := NewEvent("SOME_FUTURE_EVENT_TYPE"); ok {
		t.Fatal("expected unknown event name to report ok=false")
	}

	v, ok := NewEvent("READY")
	if !ok {
		t.Fatal("expected READY to be known")
	}
	if _, isReady := v.(*ReadyEvent); !isReady {
		t.Fatalf("expected *ReadyEvent, got %T", v)
	}
}

func TestRegisterEvent(t *testing.T) {
	type customEvent struct {
		Foo string `json:"foo"`
	}
	RegisterEvent("CUSTOM_TEST_EVENT", func() interface{} { return new(customEvent) })

	v, ok := NewEvent("CUSTOM_TEST_EVENT")
	if !ok {
		t.Fatal("expected CUSTOM_TEST_EVENT to be registered")
	}
	if _, isCustom := v.(*customEvent); !isCustom {
		t.Fatalf("expected *customEvent, got %T", v)
	}
}

func TestIntentsHas(t *testing.T) {
	i := IntentGuilds | IntentGuildMessages
	if !i.Has(IntentGuilds) {
		t.Fatal("expected IntentGuilds to be set")
	}
	if i.Has(IntentGuildBans) {
		t.Fatal("did not expect IntentGuildBans to be set")
	}
	if !i.Has(IntentGuilds | IntentGuildMessages) {
		t.Fatal("expected combined mask to be set")
	}
}
