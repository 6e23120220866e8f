package model

import "math/big"

type EventType string

const (
	EventContractDeployment EventType = "CONTRACT_DEPLOYMENT"
	EventSwap               EventType = "SWAP"
	EventBridge             EventType = "BRIDGE"
	EventNFTMint            EventType = "NFT_MINT"
	EventNFTTransfer        EventType = "NFT_TRANSFER"
	EventGovernanceVote     EventType = "GOVERNANCE_VOTE"
	EventEscrowUsage        EventType = "ESCROW_USAGE"
	EventArbitration        EventType = "ARBITRATION"
)

// NormalizedEvent is one on-chain transaction reduced to the shape the
// signal pipeline cares about. Address is the initiating account,
// lower-cased; it is the identity key for all downstream aggregation.
type NormalizedEvent struct {
	Address     string            `json:"address"`
	EventType   EventType         `json:"event_type"`
	Protocol    string            `json:"protocol,omitempty"`
	Value       *big.Int          `json:"value"`
	Timestamp   int64             `json:"timestamp"`
	TxHash      string            `json:"tx_hash"`
	BlockNumber uint64            `json:"block_number"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// UserActivity aggregates one address's events into a behavioral profile.
// Instances are built fresh per dispatch cycle and never mutated afterwards.
type UserActivity struct {
	Address             string
	Events              []NormalizedEvent
	FirstTxTimestamp    int64 // unix seconds, 0 when no events
	LastTxTimestamp     int64
	ContractDeployments int
	SwapCount           int
	BridgeCount         int
	NFTMintCount        int
	NFTTransferCount    int
	GovernanceVoteCount int
	TotalValue          *big.Int
	UniqueProtocols     map[string]struct{}
}

type SignalScore struct {
	SignalType  string `json:"signal_type"`
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
	Timestamp   int64  `json:"timestamp"`
}

// UserSignals is the engine's output bundle for one address. Signals are
// ordered by descending score; PrimaryIntent is empty when no signal scored
// above zero.
type UserSignals struct {
	Address       string        `json:"address"`
	Signals       []SignalScore `json:"signals"`
	PrimaryIntent string        `json:"intent,omitempty"`
	LastUpdated   int64         `json:"last_updated"`
}
