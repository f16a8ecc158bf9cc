package domain

import (
	"errors"
	"testing"
)

func TestParseTone(t *testing.T) {
	tests := []struct {
		raw  string
		want Tone
		ok   bool
	}{
		{raw: "", want: ToneProfessional, ok: true},
		{raw: "  Warm ", want: ToneWarm, ok: true},
		{raw: "persuasive", want: TonePersuasive, ok: true},
		{raw: "sarcastic", ok: false},
	}
	for _, tt := range tests {
		got, ok := ParseTone(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseTone(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTonesReturnsCopy(t *testing.T) {
	tones := Tones()
	if len(tones) != 6 || tones[0].Value != DefaultTone {
		t.Fatalf("unexpected tones: %+v", tones)
	}
	tones[0].Label = "changed"
	if Tones()[0].Label != "Professional" {
		t.Fatalf("Tones must not expose the shared slice")
	}
}

func TestDraftHasContext(t *testing.T) {
	if (Draft{Context: " \n\t"}).HasContext() {
		t.Fatalf("whitespace context should count as empty")
	}
	if !(Draft{Context: "Hi Sam"}).HasContext() {
		t.Fatalf("expected context")
	}
}

func TestOutcomeMessage(t *testing.T) {
	ok := Outcome{Email: "Dear team"}
	if ok.Failed() || ok.Message() != "Dear team" {
		t.Fatalf("unexpected success outcome: %+v", ok)
	}
	failed := Outcome{Err: errors.New("api error: 429 Too Many Requests - rate limited")}
	want := "Sorry, there was an error generating your email. Please try again. Error: api error: 429 Too Many Requests - rate limited"
	if !failed.Failed() || failed.Message() != want {
		t.Fatalf("Message() = %q", failed.Message())
	}
}
