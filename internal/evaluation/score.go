package evaluation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Score a judge verdict normalized to [0,1]
type Score struct {
	Value     float64 `json:"value"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// NormalizeScore maps a raw judge score to [0,1].
// Booleans become 0/1, numbers are clamped, and strings holding either are parsed.
func NormalizeScore(raw any) (float64, error) {
	switch v := raw.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case float64:
		return clamp(v)
	case float32:
		return clamp(float64(v))
	case int:
		return clamp(float64(v))
	case int64:
		return clamp(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("score %q: %w", v, err)
		}
		return clamp(f)
	case string:
		return parseScoreString(v)
	case nil:
		return 0, fmt.Errorf("score is missing")
	default:
		return 0, fmt.Errorf("unsupported score type %T", raw)
	}
}

func parseScoreString(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "pass", "correct":
		return 1, nil
	case "false", "no", "fail", "incorrect":
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized score %q", s)
	}
	return clamp(f)
}

func clamp(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("score %v is not finite", f)
	}
	return math.Max(0, math.Min(1, f)), nil
}
