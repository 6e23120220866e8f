package signal

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"basesignals/internal/activity"
	"basesignals/internal/model"
)

// Engine evaluates every loaded definition against a user activity snapshot
// and produces scored, explained signals plus a primary intent. Definitions
// are loaded once at construction and immutable afterwards; evaluation is a
// pure function of (activity, definitions, now).
type Engine struct {
	definitions []namedDefinition
	logger      *slog.Logger
	now         func() time.Time
}

func NewEngine(definitionsPath string, logger *slog.Logger) (*Engine, error) {
	defs, err := loadDefinitions(definitionsPath)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		names := make([]string, 0, len(defs))
		for _, d := range defs {
			names = append(names, d.name)
		}
		logger.Info("signal definitions loaded", "count", len(defs), "signals", names)
	}
	return &Engine{
		definitions: defs,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// GenerateSignals returns every definition that scored above zero, ordered
// by descending score with ties broken by rule-file order, and the derived
// primary intent.
func (e *Engine) GenerateSignals(a *model.UserActivity) model.UserSignals {
	now := e.now()

	var signals []model.SignalScore
	for _, nd := range e.definitions {
		score := e.score(a, nd.def, now)
		if score <= 0 {
			continue
		}
		signals = append(signals, model.SignalScore{
			SignalType:  nd.name,
			Score:       score,
			Explanation: e.explain(a, nd.name, nd.def, now),
			Timestamp:   now.Unix(),
		})
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Score > signals[j].Score
	})

	out := model.UserSignals{
		Address:     a.Address,
		Signals:     signals,
		LastUpdated: now.Unix(),
	}
	if len(signals) > 0 {
		out.PrimaryIntent = intentFromSignalType(signals[0].SignalType)
	}
	return out
}

func (e *Engine) score(a *model.UserActivity, def Definition, now time.Time) int {
	for key, expected := range def.Conditions {
		if !evaluateCondition(a, key, expected, now) {
			return 0
		}
	}

	score := def.Score.Base

	if def.Score.Multiplier != "" {
		score = int(math.Floor(float64(score) * multiplierValue(a, def.Score.Multiplier, now)))
	}

	if def.TimeDecay != nil && def.TimeDecay.Enabled {
		if a.LastTxTimestamp == 0 {
			return 0
		}
		days := activity.DaysSinceLastTx(a, now)
		factor := math.Pow(0.5, float64(days)/def.TimeDecay.HalfLifeDays)
		score = int(math.Floor(float64(score) * factor))
	}

	if score > def.Score.Max {
		score = def.Score.Max
	}
	if score < 0 {
		score = 0
	}
	return score
}

// explain interpolates the per-type template; signal types without one fall
// back to the definition's description.
func (e *Engine) explain(a *model.UserActivity, signalType string, def Definition, now time.Time) string {
	days := activity.DaysSinceFirstTx(a, now)

	switch signalType {
	case "BUILDER_SIGNAL":
		return fmt.Sprintf("You are tagged as BUILDER because you deployed %d contracts and have been active for %d days.",
			a.ContractDeployments, days)
	case "FARMER_SIGNAL":
		return fmt.Sprintf("You are tagged as FARMER because you made %d swaps and %d bridges with low average value.",
			a.SwapCount, a.BridgeCount)
	case "LONG_TERM_SIGNAL":
		return fmt.Sprintf("You are tagged as LONG_TERM because you've been active for %d days with %d transactions.",
			days, len(a.Events))
	case "ACTIVE_USER_SIGNAL":
		last30 := activity.TxCountLastNDays(a, 30, now)
		return fmt.Sprintf("You are tagged as ACTIVE_USER because you made %d transactions in the last 30 days across %d protocols.",
			last30, len(a.UniqueProtocols))
	case "NEWCOMER_SIGNAL":
		return fmt.Sprintf("You are tagged as NEWCOMER because you joined Base %d days ago with %d transactions.",
			days, len(a.Events))
	default:
		return def.Description
	}
}

func intentFromSignalType(signalType string) string {
	return strings.ToLower(strings.TrimSuffix(signalType, "_SIGNAL"))
}
