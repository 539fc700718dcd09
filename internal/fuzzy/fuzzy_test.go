package fuzzy

import "testing"

func TestTokenSetRatioIgnoresWordOrder(t *testing.T) {
	if got := TokenSetRatio("open the app", "app the open"); got != 100 {
		t.Fatalf("expected reordered phrases to score 100, got %d", got)
	}
}

func TestTokenSetRatioSubsetScoresFull(t *testing.T) {
	// The token-set construction scores a phrase fully contained in the
	// other as a perfect match; the resolver's keyword gate relies on it.
	if got := TokenSetRatio("jarvis open notepad", "open"); got != 100 {
		t.Fatalf("expected contained token set to score 100, got %d", got)
	}
}

func TestTokenSetRatioDisjointScoresLow(t *testing.T) {
	if got := TokenSetRatio("sing me a song", "weather forecast today"); got >= 50 {
		t.Fatalf("expected disjoint phrases to score below 50, got %d", got)
	}
}

func TestBestScore(t *testing.T) {
	cases := []struct {
		name       string
		text       string
		candidates []string
		wantMin    int
		wantMax    int
	}{
		{name: "empty candidates", text: "open notepad", wantMin: 0, wantMax: 0},
		{name: "exact candidate wins", text: "open notepad", candidates: []string{"weather forecast", "open notepad"}, wantMin: 100, wantMax: 100},
		{name: "best of several", text: "launch the application", candidates: []string{"launch application", "sing a song"}, wantMin: 90, wantMax: 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := BestScore(tc.text, tc.candidates)
			if got < tc.wantMin || got > tc.wantMax {
				t.Fatalf("BestScore(%q, %v) = %d, want within [%d,%d]", tc.text, tc.candidates, got, tc.wantMin, tc.wantMax)
			}
		})
	}
}
