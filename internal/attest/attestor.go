package attest

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"basesignals/internal/chain"
	"basesignals/internal/model"
)

// Submitter is the transaction-submission slice of the chain client. The
// node holds the signing key; the attestor only builds calldata.
type Submitter interface {
	SendTransaction(ctx context.Context, args chain.SendTxArgs) (string, error)
	TransactionReceipt(ctx context.Context, txHash string) (*chain.Receipt, error)
}

// Attestor writes signal scores to the on-chain signal registry, one
// transaction per signal. Submissions are sequential on purpose: a single
// sending account must not race its own nonces.
type Attestor struct {
	client         Submitter
	registry       string
	from           string
	confirmTimeout time.Duration
	pollInterval   time.Duration
	logger         *slog.Logger
}

func New(client Submitter, registry, from string, confirmTimeout time.Duration, logger *slog.Logger) *Attestor {
	if confirmTimeout <= 0 {
		confirmTimeout = 60 * time.Second
	}
	return &Attestor{
		client:         client,
		registry:       registry,
		from:           from,
		confirmTimeout: confirmTimeout,
		pollInterval:   2 * time.Second,
		logger:         logger,
	}
}

// Attest submits attestSignal(user, keccak256(signalType), score) and waits
// for the receipt within the configured bound.
func (a *Attestor) Attest(ctx context.Context, address string, sig model.SignalScore) error {
	data, err := encodeAttestCall(address, sig.SignalType, sig.Score)
	if err != nil {
		return fmt.Errorf("encode attestation: %w", err)
	}
	txHash, err := a.client.SendTransaction(ctx, chain.SendTxArgs{
		From: a.from,
		To:   a.registry,
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("submit attestation: %w", err)
	}
	if a.logger != nil {
		a.logger.Info("attestation submitted", "address", address, "signal", sig.SignalType, "tx_hash", txHash)
	}
	return a.waitConfirmed(ctx, txHash)
}

func (a *Attestor) waitConfirmed(ctx context.Context, txHash string) error {
	deadline := time.Now().Add(a.confirmTimeout)
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		rcpt, err := a.client.TransactionReceipt(ctx, txHash)
		if err == nil && rcpt != nil {
			if rcpt.Status == 0 {
				return fmt.Errorf("attestation tx %s reverted", txHash)
			}
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("attestation tx %s not confirmed within %s", txHash, a.confirmTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// encodeAttestCall builds calldata for attestSignal(address,bytes32,uint256).
func encodeAttestCall(address, signalType string, score int) (string, error) {
	addrBytes, err := parseAddress(address)
	if err != nil {
		return "", err
	}

	selector := keccak256([]byte("attestSignal(address,bytes32,uint256)"))[:4]
	typeHash := keccak256([]byte(signalType))

	data := make([]byte, 0, 4+3*32)
	data = append(data, selector...)
	data = append(data, leftPad(addrBytes, 32)...)
	data = append(data, typeHash...)
	data = append(data, leftPad(new(big.Int).SetInt64(int64(score)).Bytes(), 32)...)

	return "0x" + hex.EncodeToString(data), nil
}

func parseAddress(address string) ([]byte, error) {
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(address)), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}
	if len(b) != 20 {
		return nil, fmt.Errorf("invalid address length %d for %q", len(b), address)
	}
	return b, nil
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

func leftPad(b []byte, size int) []byte {
	if len(b) >= size {
		return b[len(b)-size:]
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}
