package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"

	"basesignals/internal/chain"
	"basesignals/internal/model"
)

var ErrAlreadyRunning = errors.New("scanner is already running")

// ChainClient is the subset of the JSON-RPC surface the scanner needs.
type ChainClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	BlockByNumber(ctx context.Context, number uint64) (*chain.Block, error)
	TransactionReceipt(ctx context.Context, txHash string) (*chain.Receipt, error)
}

// Scanner tracks a cursor over processed block heights and converts raw
// transactions into normalized events on each poll. The cursor only moves
// forward; a failed block fetch is skipped, not retried.
type Scanner struct {
	client     ChainClient
	classifier *Classifier
	ckpt       Checkpoint
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
	cursor  uint64
}

func New(client ChainClient, classifier *Classifier, ckpt Checkpoint, logger *slog.Logger) *Scanner {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &Scanner{
		client:     client,
		classifier: classifier,
		ckpt:       ckpt,
		logger:     logger,
	}
}

// Start establishes the cursor: an explicit start height wins, then a saved
// checkpoint, then the chain's current head. Failing to reach the chain here
// is fatal; a scanner that cannot see the head must not start.
func (s *Scanner) Start(ctx context.Context, startBlock *uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}

	switch {
	case startBlock != nil:
		s.cursor = *startBlock
	case s.ckpt != nil:
		if height, ok, err := s.ckpt.Load(); err == nil && ok {
			s.cursor = height
		} else {
			if err != nil && s.logger != nil {
				s.logger.Warn("checkpoint load failed, starting from head", "err", err)
			}
			head, err := s.client.BlockNumber(ctx)
			if err != nil {
				return fmt.Errorf("fetch head: %w", err)
			}
			s.cursor = head
		}
	default:
		head, err := s.client.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("fetch head: %w", err)
		}
		s.cursor = head
	}

	s.running = true
	if s.logger != nil {
		s.logger.Info("scanner started", "cursor", s.cursor)
	}
	return nil
}

// Stop halts future polling. Idempotent.
func (s *Scanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Cursor returns the last processed block height.
func (s *Scanner) Cursor() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Poll fetches every block strictly above the cursor up to the current head,
// normalizes their transactions, and advances the cursor to the head. A
// single transaction or block that fails to normalize is logged and skipped.
func (s *Scanner) Poll(ctx context.Context) ([]model.NormalizedEvent, error) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil, nil
	}
	cursor := s.cursor
	s.mu.Unlock()

	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch head: %w", err)
	}
	if head <= cursor {
		return nil, nil
	}

	var events []model.NormalizedEvent
	for n := cursor + 1; n <= head; n++ {
		blk, err := s.client.BlockByNumber(ctx, n)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("block fetch failed, skipping", "block", n, "err", err)
			}
			continue
		}
		for _, tx := range blk.Transactions {
			ev, err := s.normalizeTx(ctx, tx, uint64(blk.Number), int64(blk.Timestamp))
			if err != nil {
				if s.logger != nil {
					s.logger.Warn("normalize failed, skipping tx", "tx_hash", tx.Hash, "err", err)
				}
				continue
			}
			events = append(events, ev)
		}
	}

	s.mu.Lock()
	s.cursor = head
	s.mu.Unlock()

	if s.ckpt != nil {
		if err := s.ckpt.Save(head); err != nil && s.logger != nil {
			s.logger.Warn("checkpoint save failed", "height", head, "err", err)
		}
	}
	return events, nil
}

func (s *Scanner) normalizeTx(ctx context.Context, tx chain.Transaction, blockNumber uint64, timestamp int64) (model.NormalizedEvent, error) {
	from := strings.ToLower(strings.TrimSpace(tx.From))
	if from == "" {
		return model.NormalizedEvent{}, fmt.Errorf("transaction %s has no sender", tx.Hash)
	}

	value := new(big.Int)
	if tx.Value != nil {
		value.Set(tx.Value.Int())
	}

	ev := model.NormalizedEvent{
		Address:     from,
		Value:       value,
		Timestamp:   timestamp,
		TxHash:      tx.Hash,
		BlockNumber: blockNumber,
	}

	// No destination means a contract deployment. The deployed address comes
	// from the receipt, best-effort: a receipt failure must not drop the event.
	if tx.To == "" {
		ev.EventType = model.EventContractDeployment
		ev.Metadata = map[string]string{}
		if rcpt, err := s.client.TransactionReceipt(ctx, tx.Hash); err == nil && rcpt != nil && rcpt.ContractAddress != "" {
			ev.Metadata["contract_address"] = strings.ToLower(rcpt.ContractAddress)
		} else if err != nil && s.logger != nil {
			s.logger.Warn("receipt fetch failed", "tx_hash", tx.Hash, "err", err)
		}
		return ev, nil
	}

	if eventType, protocol, ok := s.classifier.Classify(tx); ok {
		ev.EventType = eventType
		ev.Protocol = protocol
		return ev, nil
	}

	// Unclassified transactions default to SWAP. Coarse, but it keeps every
	// observed transaction feeding the activity counters.
	ev.EventType = model.EventSwap
	return ev, nil
}
