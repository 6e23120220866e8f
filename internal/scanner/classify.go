package scanner

import (
	"strings"

	"basesignals/internal/chain"
	"basesignals/internal/model"
)

// Classifier pattern-matches transactions against known contract addresses
// and call selectors. It is a heuristic, not a contract-call decoder: a
// transaction that matches nothing falls through to the SWAP default in the
// scanner.
type Classifier struct {
	swapContracts   map[string]string // lower-cased address -> protocol label
	bridgeContracts map[string]string
	swapSelectors   map[string]struct{} // 4-byte selector, "0x"-prefixed
}

func DefaultClassifier() *Classifier {
	return &Classifier{
		swapContracts: map[string]string{
			"0x2626664c2603336e57b271c5c0b26f421741e481": "Uniswap",
			"0x6ff5693b99212da76ad316178a184ab56d299b43": "Uniswap",
			"0x6bded42c6da8fbf0d2ba55b2fa120c5e0c8d7891": "SushiSwap",
			"0x327df1e6de05895d2ab08513aadd9313fe505d86": "BaseSwap",
			"0xcf77a3ba9a5ca399b7c97c74d54e5b1beb874e43": "Aerodrome",
		},
		bridgeContracts: map[string]string{
			"0x4200000000000000000000000000000000000010": "Base Bridge",
			"0x3154cf16ccdb4c6d922629664174b904d80f2c35": "Base Bridge",
			"0x49048044d57e1c92a77f79988d21fa8faf74e97e": "Base Bridge",
		},
		swapSelectors: map[string]struct{}{
			"0x38ed1739": {}, // swapExactTokensForTokens
			"0x7ff36ab5": {}, // swapExactETHForTokens
			"0x18cbafe5": {}, // swapExactTokensForETH
			"0x04e45aaf": {}, // exactInputSingle
			"0x5ae401dc": {}, // multicall(deadline,bytes[])
		},
	}
}

// Classify reports the event type and protocol label for a transaction when
// a known pattern matches. ok is false when nothing matched.
func (c *Classifier) Classify(tx chain.Transaction) (model.EventType, string, bool) {
	to := strings.ToLower(tx.To)
	if protocol, found := c.bridgeContracts[to]; found {
		return model.EventBridge, protocol, true
	}
	if protocol, found := c.swapContracts[to]; found {
		return model.EventSwap, protocol, true
	}
	if len(tx.Input) >= 10 {
		selector := strings.ToLower(tx.Input[:10])
		if _, found := c.swapSelectors[selector]; found {
			return model.EventSwap, "", true
		}
	}
	return "", "", false
}
