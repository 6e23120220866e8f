package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Client is a minimal Ethereum JSON-RPC client covering the three calls the
// pipeline needs plus transaction submission for the attestor.
type Client struct {
	url    string
	hc     *http.Client
	nextID atomic.Int64
}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url: strings.TrimRight(url, "/"),
		hc:  &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	if params == nil {
		params = []any{}
	}
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("rpc %s status=%d", method, resp.StatusCode)
	}
	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("rpc %s decode: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rpc %s: %s (code %d)", method, rpcResp.Error.Message, rpcResp.Error.Code)
	}
	if out == nil {
		return nil
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return nil
	}
	return json.Unmarshal(rpcResp.Result, out)
}

// BlockNumber returns the chain's current head height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var hex string
	if err := c.call(ctx, "eth_blockNumber", nil, &hex); err != nil {
		return 0, err
	}
	return ParseHexUint64(hex)
}

// BlockByNumber fetches one block including full transaction bodies.
func (c *Client) BlockByNumber(ctx context.Context, number uint64) (*Block, error) {
	var blk *Block
	if err := c.call(ctx, "eth_getBlockByNumber", []any{fmt.Sprintf("0x%x", number), true}, &blk); err != nil {
		return nil, err
	}
	if blk == nil {
		return nil, fmt.Errorf("block %d not found", number)
	}
	return blk, nil
}

// TransactionReceipt returns nil without error when the receipt does not
// exist yet (pending transaction).
func (c *Client) TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	var rcpt *Receipt
	if err := c.call(ctx, "eth_getTransactionReceipt", []any{txHash}, &rcpt); err != nil {
		return nil, err
	}
	return rcpt, nil
}

// SendTxArgs is the eth_sendTransaction parameter object. The node is
// expected to hold and manage the sending key.
type SendTxArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
	Data string `json:"data"`
}

func (c *Client) SendTransaction(ctx context.Context, args SendTxArgs) (string, error) {
	var txHash string
	if err := c.call(ctx, "eth_sendTransaction", []any{args}, &txHash); err != nil {
		return "", err
	}
	if txHash == "" {
		return "", fmt.Errorf("eth_sendTransaction returned no hash")
	}
	return txHash, nil
}
