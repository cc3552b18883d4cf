package clinical

import "testing"

func TestLevelForScore(t *testing.T) {
	rt := DefaultRiskThresholds()

	cases := []struct {
		score    float64
		expected string
	}{
		{0, RISK_LEVEL_LOW},
		{39.9, RISK_LEVEL_LOW},
		{40, RISK_LEVEL_MODERATE},
		{69.9, RISK_LEVEL_MODERATE},
		{70, RISK_LEVEL_HIGH},
		{100, RISK_LEVEL_HIGH},
	}
	for _, c := range cases {
		got := rt.LevelForScore(c.score)
		if got != c.expected {
			t.Errorf("score %.1f: expected %s, got %s", c.score, c.expected, got)
		}
	}
}
