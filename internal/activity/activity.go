package activity

import (
	"math/big"
	"strings"
	"time"

	"basesignals/internal/model"
)

const secondsPerDay = 86400

// Build folds the events matching address (case-insensitive) into a fresh
// UserActivity snapshot. The fold is order-independent: counters, totals and
// min/max timestamps come out the same for any permutation of the input.
func Build(address string, events []model.NormalizedEvent) *model.UserActivity {
	addr := strings.ToLower(address)

	activity := &model.UserActivity{
		Address:         addr,
		TotalValue:      new(big.Int),
		UniqueProtocols: make(map[string]struct{}),
	}

	for _, ev := range events {
		if strings.ToLower(ev.Address) != addr {
			continue
		}
		activity.Events = append(activity.Events, ev)

		switch ev.EventType {
		case model.EventContractDeployment:
			activity.ContractDeployments++
		case model.EventSwap:
			activity.SwapCount++
		case model.EventBridge:
			activity.BridgeCount++
		case model.EventNFTMint:
			activity.NFTMintCount++
		case model.EventNFTTransfer:
			activity.NFTTransferCount++
		case model.EventGovernanceVote:
			activity.GovernanceVoteCount++
		}

		if ev.Protocol != "" {
			activity.UniqueProtocols[ev.Protocol] = struct{}{}
		}
		if ev.Value != nil {
			activity.TotalValue.Add(activity.TotalValue, ev.Value)
		}
		if activity.FirstTxTimestamp == 0 || ev.Timestamp < activity.FirstTxTimestamp {
			activity.FirstTxTimestamp = ev.Timestamp
		}
		if activity.LastTxTimestamp == 0 || ev.Timestamp > activity.LastTxTimestamp {
			activity.LastTxTimestamp = ev.Timestamp
		}
	}
	return activity
}

// DaysSinceFirstTx returns whole days elapsed since the first transaction,
// floored. Zero when the activity has no events.
func DaysSinceFirstTx(a *model.UserActivity, now time.Time) int {
	if a.FirstTxTimestamp == 0 {
		return 0
	}
	elapsed := now.Unix() - a.FirstTxTimestamp
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / secondsPerDay)
}

// DaysSinceLastTx returns whole days elapsed since the most recent
// transaction, floored. Zero when the activity has no events.
func DaysSinceLastTx(a *model.UserActivity, now time.Time) int {
	if a.LastTxTimestamp == 0 {
		return 0
	}
	elapsed := now.Unix() - a.LastTxTimestamp
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / secondsPerDay)
}

// TxCountLastNDays counts events at or after the cutoff now-days.
func TxCountLastNDays(a *model.UserActivity, days int, now time.Time) int {
	cutoff := now.Unix() - int64(days)*secondsPerDay
	count := 0
	for _, ev := range a.Events {
		if ev.Timestamp >= cutoff {
			count++
		}
	}
	return count
}

// AvgTxValue is totalValue divided by event count, whole-unit integer
// division. The fractional remainder is discarded to match native-currency
// integer units.
func AvgTxValue(a *model.UserActivity) *big.Int {
	if len(a.Events) == 0 {
		return new(big.Int)
	}
	return new(big.Int).Div(a.TotalValue, big.NewInt(int64(len(a.Events))))
}
