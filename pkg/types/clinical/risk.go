package clinical

const (
	RISK_LEVEL_LOW      = "low"
	RISK_LEVEL_MODERATE = "moderate"
	RISK_LEVEL_HIGH     = "high"
)

// RiskThresholds holds the score cut-offs between the risk bands reported by
// the prediction service. All band checks must go through LevelForScore so
// the cut-offs live in one place.
type RiskThresholds struct {
	Moderate float64 `json:"moderate" yaml:"moderate"`
	High     float64 `json:"high" yaml:"high"`
}

func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{
		Moderate: 40,
		High:     70,
	}
}

func (rt RiskThresholds) LevelForScore(score float64) string {
	if score >= rt.High {
		return RISK_LEVEL_HIGH
	}
	if score >= rt.Moderate {
		return RISK_LEVEL_MODERATE
	}
	return RISK_LEVEL_LOW
}
