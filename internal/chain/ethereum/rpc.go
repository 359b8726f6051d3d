package ethereum

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/certledger/chain-service/internal/chain"
	"github.com/certledger/chain-service/internal/types"
)

const (
	defaultHTTPTimeout  = 30 * time.Second
	receiptPollInterval = 4 * time.Second
)

// RPCClient Ethereum JSON-RPC 客户端，实现 chain.Ledger
type RPCClient struct {
	endpoint     string
	client       *http.Client
	pollInterval time.Duration
}

var _ chain.Ledger = (*RPCClient)(nil)

// NewRPCClient 创建 JSON-RPC 客户端
func NewRPCClient(endpoint string) *RPCClient {
	return &RPCClient{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		pollInterval: receiptPollInterval,
	}
}

// RPCRequest RPC 请求
type RPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// RPCResponse RPC 响应
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// RPCError RPC 错误
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// call 执行一次 RPC 调用
// 传输层失败归类为 NetworkError，节点返回的 error 对象归类为 NodeRejectedError
func (c *RPCClient) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	req := &RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal RPC request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP request")
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &types.NetworkError{Op: method, Err: err}
	}
	defer resp.Body.Close()

	var rpcResp RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, &types.NetworkError{Op: method, Err: errors.Wrap(err, "failed to decode RPC response")}
	}

	if rpcResp.Error != nil {
		return nil, &types.NodeRejectedError{
			Op:      method,
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
		}
	}

	return rpcResp.Result, nil
}

// callBig 执行返回 hex 数值的 RPC 调用
func (c *RPCClient) callBig(ctx context.Context, method string, params []interface{}) (*big.Int, error) {
	result, err := c.call(ctx, method, params)
	if err != nil {
		return nil, err
	}

	var value hexutil.Big
	if err := json.Unmarshal(result, &value); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal %s result", method)
	}
	return (*big.Int)(&value), nil
}

// ChainID 查询链 ID
func (c *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "eth_chainId", []interface{}{})
}

// Balance 查询余额（latest 区块）
func (c *RPCClient) Balance(ctx context.Context, address common.Address) (*big.Int, error) {
	return c.callBig(ctx, "eth_getBalance", []interface{}{address.Hex(), "latest"})
}

// PendingNonce 查询交易计数（pending，包含未上链交易，用作下一个 nonce）
func (c *RPCClient) PendingNonce(ctx context.Context, address common.Address) (uint64, error) {
	result, err := c.call(ctx, "eth_getTransactionCount", []interface{}{address.Hex(), "pending"})
	if err != nil {
		return 0, err
	}

	var nonce hexutil.Uint64
	if err := json.Unmarshal(result, &nonce); err != nil {
		return 0, errors.Wrap(err, "failed to unmarshal nonce")
	}
	return uint64(nonce), nil
}

// FeeQuote 获取当前费用快照
func (c *RPCClient) FeeQuote(ctx context.Context) (*chain.FeeQuote, error) {
	gasPrice, err := c.callBig(ctx, "eth_gasPrice", []interface{}{})
	if err != nil {
		return nil, err
	}
	return &chain.FeeQuote{GasPrice: gasPrice}, nil
}

// txCallObject eth_estimateGas / eth_call 的参数对象
type txCallObject struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value,omitempty"`
}

func newTxCallObject(msg chain.CallMsg) txCallObject {
	obj := txCallObject{
		From: msg.From.Hex(),
		To:   msg.To.Hex(),
		Data: hexutil.Encode(msg.Data),
	}
	if msg.Value != nil && msg.Value.Sign() > 0 {
		obj.Value = hexutil.EncodeBig(msg.Value)
	}
	return obj
}

// EstimateGas 估算 gas 用量
func (c *RPCClient) EstimateGas(ctx context.Context, msg chain.CallMsg) (uint64, error) {
	result, err := c.call(ctx, "eth_estimateGas", []interface{}{newTxCallObject(msg)})
	if err != nil {
		return 0, err
	}

	var gas hexutil.Uint64
	if err := json.Unmarshal(result, &gas); err != nil {
		return 0, errors.Wrap(err, "failed to unmarshal gas estimate")
	}
	return uint64(gas), nil
}

// Call 只读合约调用
func (c *RPCClient) Call(ctx context.Context, msg chain.CallMsg) ([]byte, error) {
	result, err := c.call(ctx, "eth_call", []interface{}{newTxCallObject(msg), "latest"})
	if err != nil {
		return nil, err
	}

	var data hexutil.Bytes
	if err := json.Unmarshal(result, &data); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal call result")
	}
	return data, nil
}

// Broadcast 广播已签名交易
func (c *RPCClient) Broadcast(ctx context.Context, rawTx string) (string, error) {
	result, err := c.call(ctx, "eth_sendRawTransaction", []interface{}{rawTx})
	if err != nil {
		return "", err
	}

	var txHash string
	if err := json.Unmarshal(result, &txHash); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal transaction hash")
	}
	return txHash, nil
}

// rpcReceipt eth_getTransactionReceipt 响应体
type rpcReceipt struct {
	TransactionHash   string          `json:"transactionHash"`
	BlockNumber       hexutil.Uint64  `json:"blockNumber"`
	GasUsed           hexutil.Uint64  `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big    `json:"effectiveGasPrice"`
	Status            hexutil.Uint64  `json:"status"`
}

// AwaitReceipt 轮询等待交易回执
// 不设固定超时：出块延迟由网络决定，等待上限由调用方通过 ctx 控制
func (c *RPCClient) AwaitReceipt(ctx context.Context, txHash string) (*chain.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		result, err := c.call(ctx, "eth_getTransactionReceipt", []interface{}{txHash})
		if err != nil {
			return nil, err
		}

		// 节点对未上链交易返回 null
		if len(result) > 0 && !bytes.Equal(result, []byte("null")) {
			var receipt rpcReceipt
			if err := json.Unmarshal(result, &receipt); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal receipt")
			}

			out := &chain.Receipt{
				TxHash:      receipt.TransactionHash,
				BlockNumber: uint64(receipt.BlockNumber),
				GasUsed:     uint64(receipt.GasUsed),
				Status:      uint64(receipt.Status),
			}
			if receipt.EffectiveGasPrice != nil {
				out.EffectiveGasPrice = (*big.Int)(receipt.EffectiveGasPrice)
			}
			return out, nil
		}

		select {
		case <-ctx.Done():
			return nil, &types.NetworkError{Op: "eth_getTransactionReceipt", Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}
