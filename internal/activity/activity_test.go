package activity

import (
	"math/big"
	"testing"
	"time"

	"basesignals/internal/model"
)

var now = time.Unix(1_700_000_000, 0)

const day = int64(86400)

func event(addr string, eventType model.EventType, daysAgo int64, value int64, protocol string) model.NormalizedEvent {
	return model.NormalizedEvent{
		Address:   addr,
		EventType: eventType,
		Protocol:  protocol,
		Value:     big.NewInt(value),
		Timestamp: now.Unix() - daysAgo*day,
	}
}

func TestBuildCounters(t *testing.T) {
	events := []model.NormalizedEvent{
		event("0xabc", model.EventContractDeployment, 10, 0, ""),
		event("0xabc", model.EventSwap, 8, 100, "Uniswap"),
		event("0xabc", model.EventSwap, 6, 200, "SushiSwap"),
		event("0xabc", model.EventBridge, 4, 300, "Base Bridge"),
		event("0xabc", model.EventNFTMint, 3, 0, ""),
		event("0xabc", model.EventNFTTransfer, 2, 0, ""),
		event("0xabc", model.EventGovernanceVote, 1, 0, ""),
	}
	a := Build("0xabc", events)

	if a.ContractDeployments != 1 || a.SwapCount != 2 || a.BridgeCount != 1 {
		t.Fatalf("unexpected counters: %+v", a)
	}
	if a.NFTMintCount != 1 || a.NFTTransferCount != 1 || a.GovernanceVoteCount != 1 {
		t.Fatalf("unexpected nft/governance counters: %+v", a)
	}
	if len(a.UniqueProtocols) != 3 {
		t.Fatalf("expected 3 unique protocols, got %d", len(a.UniqueProtocols))
	}
	if a.TotalValue.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("expected total value 600, got %s", a.TotalValue)
	}
	if a.FirstTxTimestamp != now.Unix()-10*day || a.LastTxTimestamp != now.Unix()-1*day {
		t.Fatalf("unexpected timestamp bounds: first=%d last=%d", a.FirstTxTimestamp, a.LastTxTimestamp)
	}
}

func TestBuildFiltersByAddressCaseInsensitive(t *testing.T) {
	events := []model.NormalizedEvent{
		event("0xAbCd", model.EventSwap, 1, 100, ""),
		event("0xabcd", model.EventSwap, 2, 100, ""),
		event("0xother", model.EventSwap, 1, 999, ""),
	}
	a := Build("0xABCD", events)
	if len(a.Events) != 2 {
		t.Fatalf("expected 2 matching events, got %d", len(a.Events))
	}
	if a.Address != "0xabcd" {
		t.Fatalf("expected lowercased address, got %q", a.Address)
	}
	if a.TotalValue.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("expected total 200, got %s", a.TotalValue)
	}
}

func TestBuildOrderIndependent(t *testing.T) {
	events := []model.NormalizedEvent{
		event("0xabc", model.EventSwap, 30, 100, "Uniswap"),
		event("0xabc", model.EventBridge, 5, 200, "Base Bridge"),
		event("0xabc", model.EventContractDeployment, 15, 0, ""),
	}
	reversed := []model.NormalizedEvent{events[2], events[1], events[0]}

	a := Build("0xabc", events)
	b := Build("0xabc", reversed)

	if a.SwapCount != b.SwapCount || a.BridgeCount != b.BridgeCount || a.ContractDeployments != b.ContractDeployments {
		t.Fatalf("counters differ across orderings: %+v vs %+v", a, b)
	}
	if a.TotalValue.Cmp(b.TotalValue) != 0 {
		t.Fatalf("totals differ: %s vs %s", a.TotalValue, b.TotalValue)
	}
	if a.FirstTxTimestamp != b.FirstTxTimestamp || a.LastTxTimestamp != b.LastTxTimestamp {
		t.Fatalf("timestamp bounds differ across orderings")
	}
}

func TestBuildEmpty(t *testing.T) {
	a := Build("0xabc", nil)
	if len(a.Events) != 0 || a.FirstTxTimestamp != 0 || a.LastTxTimestamp != 0 {
		t.Fatalf("expected empty activity, got %+v", a)
	}
	if a.TotalValue.Sign() != 0 {
		t.Fatalf("expected zero total value, got %s", a.TotalValue)
	}
}

func TestDaysSinceFirstAndLast(t *testing.T) {
	events := []model.NormalizedEvent{
		event("0xabc", model.EventSwap, 45, 0, ""),
		event("0xabc", model.EventSwap, 3, 0, ""),
	}
	a := Build("0xabc", events)

	if got := DaysSinceFirstTx(a, now); got != 45 {
		t.Fatalf("expected 45 days since first tx, got %d", got)
	}
	if got := DaysSinceLastTx(a, now); got != 3 {
		t.Fatalf("expected 3 days since last tx, got %d", got)
	}

	empty := Build("0xabc", nil)
	if DaysSinceFirstTx(empty, now) != 0 || DaysSinceLastTx(empty, now) != 0 {
		t.Fatalf("expected zero days for empty activity")
	}
}

func TestDaysSinceFloorsPartialDays(t *testing.T) {
	a := Build("0xabc", []model.NormalizedEvent{{
		Address:   "0xabc",
		EventType: model.EventSwap,
		Timestamp: now.Unix() - day - day/2,
	}})
	if got := DaysSinceLastTx(a, now); got != 1 {
		t.Fatalf("expected 1.5 days to floor to 1, got %d", got)
	}
}

func TestTxCountLastNDays(t *testing.T) {
	events := []model.NormalizedEvent{
		event("0xabc", model.EventSwap, 40, 0, ""),
		event("0xabc", model.EventSwap, 29, 0, ""),
		event("0xabc", model.EventSwap, 5, 0, ""),
		event("0xabc", model.EventSwap, 30, 0, ""), // exactly at the cutoff
	}
	a := Build("0xabc", events)
	if got := TxCountLastNDays(a, 30, now); got != 3 {
		t.Fatalf("expected 3 events in the last 30 days (cutoff inclusive), got %d", got)
	}
}

func TestAvgTxValueIntegerDivision(t *testing.T) {
	events := []model.NormalizedEvent{
		event("0xabc", model.EventSwap, 1, 10, ""),
		event("0xabc", model.EventSwap, 2, 11, ""),
		event("0xabc", model.EventSwap, 3, 12, ""),
	}
	a := Build("0xabc", events)
	if got := AvgTxValue(a); got.Cmp(big.NewInt(11)) != 0 {
		t.Fatalf("expected average 11, got %s", got)
	}

	uneven := Build("0xabc", []model.NormalizedEvent{
		event("0xabc", model.EventSwap, 1, 10, ""),
		event("0xabc", model.EventSwap, 2, 11, ""),
	})
	if got := AvgTxValue(uneven); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("expected remainder discarded, got %s", got)
	}

	if got := AvgTxValue(Build("0xabc", nil)); got.Sign() != 0 {
		t.Fatalf("expected zero average for empty activity, got %s", got)
	}
}
