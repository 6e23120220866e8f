package signal

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"basesignals/internal/activity"
	"basesignals/internal/model"
)

// weiPerUnit converts whole native-currency units to base units for the
// avg_tx_value threshold.
var weiPerUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// evaluateCondition checks one condition key from the closed vocabulary.
// Unknown keys are a deterministic mismatch, not an error: a rule file with
// a misspelled key simply never fires.
func evaluateCondition(a *model.UserActivity, key string, expected any, now time.Time) bool {
	switch key {
	case "contract_deployments":
		return a.ContractDeployments >= asInt(expected)
	case "active_days":
		return activity.DaysSinceFirstTx(a, now) >= asInt(expected)
	case "small_swaps_count":
		return a.SwapCount >= asInt(expected)
	case "bridge_count":
		return a.BridgeCount >= asInt(expected)
	case "avg_tx_value":
		// Threshold is in whole native units; the activity average must be
		// strictly below it.
		f := asFloat(expected)
		threshold := new(big.Int).Mul(big.NewInt(int64(math.Trunc(f))), weiPerUnit)
		if frac := f - math.Trunc(f); frac > 0 {
			threshold.Add(threshold, big.NewInt(int64(frac*1e18)))
		}
		return activity.AvgTxValue(a).Cmp(threshold) < 0
	case "holding_period_days":
		return activity.DaysSinceFirstTx(a, now) >= asInt(expected)
	case "tx_count":
		return len(a.Events) >= asInt(expected)
	case "first_tx_days_ago":
		daysAgo := activity.DaysSinceFirstTx(a, now)
		if s, ok := expected.(string); ok && strings.Contains(s, "<=") {
			limit, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(s, "<=", "")))
			if err != nil {
				return false
			}
			return daysAgo <= limit
		}
		return daysAgo >= asInt(expected)
	case "tx_count_last_30_days":
		return activity.TxCountLastNDays(a, 30, now) >= asInt(expected)
	case "unique_protocols":
		return len(a.UniqueProtocols) >= asInt(expected)
	default:
		return false
	}
}

// multiplierValue resolves one of the fixed multiplier expressions.
// Unrecognized expressions resolve to 1 so a bad rule file degrades to the
// base score instead of failing.
func multiplierValue(a *model.UserActivity, expr string, now time.Time) float64 {
	switch {
	case expr == "contract_count":
		return float64(a.ContractDeployments)
	case expr == "activity_count":
		return float64(len(a.Events))
	case strings.Contains(expr, "holding_period_days / 60"):
		return float64(activity.DaysSinceFirstTx(a, now)) / 60
	case strings.Contains(expr, "tx_count_last_30_days / 5"):
		return float64(activity.TxCountLastNDays(a, 30, now)) / 5
	default:
		return 1
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return parsed
		}
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return parsed
		}
	}
	return 0
}
