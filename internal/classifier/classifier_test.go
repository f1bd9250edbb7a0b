package classifier

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/kibbyd/lifequest/internal/ability"
)

// #region fallback-tests

func TestFallbackStatMatching(t *testing.T) {
	cases := []struct {
		text string
		want ability.StatKey
	}{
		{"went to the gym and did squats", ability.Power},
		{"piano practice drill for scales", ability.Accuracy},
		{"cold shower and cleaned the flat", ability.Grit},
		{"studied math and solved a puzzle", ability.Cognition},
		{"planned the monthly budget", ability.Planning},
		{"called a friend and hosted a meeting", ability.Social},
	}
	for _, tc := range cases {
		got := Fallback(tc.text)
		if got.Stat != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.text, tc.want, got.Stat)
		}
		if got.Confidence != 0.6 {
			t.Errorf("%q: keyword match should carry 0.6 confidence, got %v", tc.text, got.Confidence)
		}
	}
}

func TestFallbackUnmatchedDefaultsToGrit(t *testing.T) {
	got := Fallback("xyzzy")
	if got.Stat != ability.Grit {
		t.Fatalf("expected grit default, got %s", got.Stat)
	}
	if got.Confidence != 0.25 {
		t.Fatalf("default match should carry low confidence, got %v", got.Confidence)
	}
}

func TestFallbackTiers(t *testing.T) {
	cases := []struct {
		text string
		want Tier
	}{
		{"ran a marathon", TierEpic},
		{"finished the big refactor", TierMajor},
		{"quick walk", TierTrivial},
		{"went for a long slow jog around the park with the dog", TierStandard},
		{"jogged", TierMinor},
	}
	for _, tc := range cases {
		if got := Fallback(tc.text).Tier; got != tc.want {
			t.Errorf("%q: expected tier %s, got %s", tc.text, tc.want, got)
		}
	}
}

func TestTierAmounts(t *testing.T) {
	cases := map[Tier]float64{
		TierTrivial:  1,
		TierMinor:    10,
		TierStandard: 50,
		TierMajor:    250,
		TierEpic:     1000,
		Tier("junk"): 10,
	}
	for tier, want := range cases {
		if got := tier.Amount(); got != want {
			t.Errorf("%s: expected %v, got %v", tier, want, got)
		}
	}
}

// #endregion fallback-tests

// #region client-tests

type stubDoer struct {
	status int
	body   string
	err    error
	seen   *http.Request
}

func (s *stubDoer) Do(req *http.Request) (*http.Response, error) {
	s.seen = req
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(strings.NewReader(s.body)),
	}, nil
}

func TestClassifySuccess(t *testing.T) {
	stub := &stubDoer{status: http.StatusOK, body: `{"stat":"pwr","tier":"standard","confidence":0.9}`}
	c := NewClientWithDoer("http://localhost/classify", stub)

	got, err := c.Classify(context.Background(), "went climbing")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Stat != ability.Power || got.Tier != TierStandard || got.Confidence != 0.9 {
		t.Fatalf("unexpected classification: %+v", got)
	}
	if stub.seen.Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", stub.seen.Method)
	}
	if ct := stub.seen.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
}

func TestClassifyTransportError(t *testing.T) {
	stub := &stubDoer{err: errors.New("connection refused")}
	c := NewClientWithDoer("http://localhost/classify", stub)

	if _, err := c.Classify(context.Background(), "x"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestClassifyBadResponses(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"bad json", http.StatusOK, `not-json`},
		{"unknown stat", http.StatusOK, `{"stat":"luck","tier":"minor"}`},
		{"unknown tier", http.StatusOK, `{"stat":"pwr","tier":"gigantic"}`},
	}
	for _, tc := range cases {
		c := NewClientWithDoer("http://localhost/classify", &stubDoer{status: tc.status, body: tc.body})
		if _, err := c.Classify(context.Background(), "x"); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestClassifyClampsBadConfidence(t *testing.T) {
	stub := &stubDoer{status: http.StatusOK, body: `{"stat":"cog","tier":"minor","confidence":4.2}`}
	c := NewClientWithDoer("http://localhost/classify", stub)

	got, err := c.Classify(context.Background(), "x")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Confidence != 0.5 {
		t.Fatalf("out-of-range confidence should reset to 0.5, got %v", got.Confidence)
	}
}

// #endregion client-tests
