package attest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"basesignals/internal/chain"
	"basesignals/internal/model"
)

type fakeSubmitter struct {
	sent    []chain.SendTxArgs
	sendErr error
	receipt *chain.Receipt
	rcptErr error
}

func (f *fakeSubmitter) SendTransaction(ctx context.Context, args chain.SendTxArgs) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, args)
	return "0xsubmitted", nil
}

func (f *fakeSubmitter) TransactionReceipt(ctx context.Context, txHash string) (*chain.Receipt, error) {
	return f.receipt, f.rcptErr
}

func newTestAttestor(sub *fakeSubmitter) *Attestor {
	a := New(sub, "0x1ca9b0bd7e8e22878b7cf4090f2c0ef77109e99e", "0xsender", time.Second, nil)
	a.pollInterval = time.Millisecond
	return a
}

func TestAttestSubmitsAndConfirms(t *testing.T) {
	sub := &fakeSubmitter{receipt: &chain.Receipt{TxHash: "0xsubmitted", Status: 1}}
	a := newTestAttestor(sub)

	err := a.Attest(context.Background(), "0x00112233445566778899aabbccddeeff00112233",
		model.SignalScore{SignalType: "BUILDER_SIGNAL", Score: 150})
	if err != nil {
		t.Fatalf("attest: %v", err)
	}
	if len(sub.sent) != 1 {
		t.Fatalf("expected one transaction, got %d", len(sub.sent))
	}
	if sub.sent[0].From != "0xsender" || sub.sent[0].To != "0x1ca9b0bd7e8e22878b7cf4090f2c0ef77109e99e" {
		t.Fatalf("unexpected envelope: %+v", sub.sent[0])
	}
}

func TestAttestRevertedTransaction(t *testing.T) {
	sub := &fakeSubmitter{receipt: &chain.Receipt{TxHash: "0xsubmitted", Status: 0}}
	a := newTestAttestor(sub)

	err := a.Attest(context.Background(), "0x00112233445566778899aabbccddeeff00112233",
		model.SignalScore{SignalType: "BUILDER_SIGNAL", Score: 150})
	if err == nil || !strings.Contains(err.Error(), "reverted") {
		t.Fatalf("expected reverted error, got %v", err)
	}
}

func TestAttestConfirmationTimeout(t *testing.T) {
	sub := &fakeSubmitter{rcptErr: errors.New("not found")}
	a := New(sub, "0xregistry000000000000000000000000000000000", "0xsender", 10*time.Millisecond, nil)
	a.pollInterval = time.Millisecond

	err := a.Attest(context.Background(), "0x00112233445566778899aabbccddeeff00112233",
		model.SignalScore{SignalType: "BUILDER_SIGNAL", Score: 150})
	if err == nil || !strings.Contains(err.Error(), "not confirmed") {
		t.Fatalf("expected confirmation timeout, got %v", err)
	}
}

func TestAttestRejectsMalformedAddress(t *testing.T) {
	sub := &fakeSubmitter{}
	a := newTestAttestor(sub)

	err := a.Attest(context.Background(), "0x1234", model.SignalScore{SignalType: "BUILDER_SIGNAL", Score: 1})
	if err == nil {
		t.Fatalf("expected error for a short address")
	}
	if len(sub.sent) != 0 {
		t.Fatalf("malformed input must not reach the chain")
	}
}

func TestEncodeAttestCallShape(t *testing.T) {
	data, err := encodeAttestCall("0x00112233445566778899AABBCCDDEEFF00112233", "BUILDER_SIGNAL", 150)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(data, "0x") {
		t.Fatalf("calldata must be 0x-prefixed")
	}
	// 4-byte selector plus three 32-byte words, hex-encoded.
	if len(data) != 2+2*(4+3*32) {
		t.Fatalf("unexpected calldata length %d", len(data))
	}

	hexData := data[2:]
	addrWord := hexData[8 : 8+64]
	if !strings.HasPrefix(addrWord, strings.Repeat("0", 24)) {
		t.Fatalf("address word must be left-padded: %s", addrWord)
	}
	if !strings.HasSuffix(addrWord, "00112233445566778899aabbccddeeff00112233") {
		t.Fatalf("address word must end with the lowercased address: %s", addrWord)
	}

	scoreWord := hexData[8+2*64:]
	if !strings.HasSuffix(scoreWord, "96") || !strings.HasPrefix(scoreWord, strings.Repeat("0", 62)) {
		t.Fatalf("score word must be big-endian 150: %s", scoreWord)
	}
}

func TestEncodeAttestCallDistinctSignalTypes(t *testing.T) {
	first, err := encodeAttestCall("0x00112233445566778899aabbccddeeff00112233", "BUILDER_SIGNAL", 150)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := encodeAttestCall("0x00112233445566778899aabbccddeeff00112233", "FARMER_SIGNAL", 150)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if first == second {
		t.Fatalf("different signal types must hash to different words")
	}
	if first[:10] != second[:10] {
		t.Fatalf("selector must not depend on arguments")
	}
}
