package chain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Quantity is a JSON-RPC hex quantity ("0x1b4") decoded into a uint64.
type Quantity uint64

func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*q = 0
		return nil
	}
	v, err := ParseHexUint64(s)
	if err != nil {
		return err
	}
	*q = Quantity(v)
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("0x%x", uint64(q)))
}

// BigQuantity is a hex quantity of arbitrary precision. Native-currency
// values go through this type so they are never truncated to a machine word.
type BigQuantity big.Int

func (b *BigQuantity) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		(*big.Int)(b).SetInt64(0)
		return nil
	}
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		(*big.Int)(b).SetInt64(0)
		return nil
	}
	if _, ok := (*big.Int)(b).SetString(s, 16); !ok {
		return fmt.Errorf("invalid hex quantity: %q", string(data))
	}
	return nil
}

func (b *BigQuantity) Int() *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return (*big.Int)(b)
}

func ParseHexUint64(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return 0, fmt.Errorf("empty hex quantity")
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex quantity %q: %w", s, err)
	}
	return v, nil
}

type Block struct {
	Number       Quantity      `json:"number"`
	Hash         string        `json:"hash"`
	Timestamp    Quantity      `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
}

type Transaction struct {
	Hash  string       `json:"hash"`
	From  string       `json:"from"`
	To    string       `json:"to"` // empty for contract deployments
	Value *BigQuantity `json:"value"`
	Input string       `json:"input"`
}

type Receipt struct {
	TxHash          string   `json:"transactionHash"`
	ContractAddress string   `json:"contractAddress"`
	Status          Quantity `json:"status"`
	BlockNumber     Quantity `json:"blockNumber"`
}
