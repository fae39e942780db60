package protocol

import "testing"

func TestMessageConstants(t *testing.T) {
	cases := map[string]string{
		MsgHello:    "hello",
		MsgMotion:   "motion",
		MsgCommand:  "command",
		MsgWelcome:  "welcome",
		MsgState:    "state",
		MsgFeedback: "feedback",
		MsgSampling: "sampling",
		MsgError:    "error",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("message constant = %q, want %q", got, want)
		}
	}
}

func TestTimingConstants(t *testing.T) {
	if SampleHz != 60 {
		t.Fatalf("SampleHz = %d, want %d", SampleHz, 60)
	}
	if BroadcastHz != 20 {
		t.Fatalf("BroadcastHz = %d, want %d", BroadcastHz, 20)
	}
}

func TestTimingSanity(t *testing.T) {
	if SampleHz <= 0 || BroadcastHz <= 0 {
		t.Fatalf("timing constants must be > 0")
	}
	if SampleHz < BroadcastHz {
		t.Fatalf("SampleHz %d below BroadcastHz %d", SampleHz, BroadcastHz)
	}
}
