package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// FeeQuote 提交前的费用快照
// 费用市场逐块波动，每次提交前必须重新获取，不允许缓存
type FeeQuote struct {
	GasPrice          *big.Int // 每单位 gas 的价格（wei）
	SuggestedGasLimit uint64   // 加过余量后的 gas 上限，由提交引擎回填
	EstimatedCost     *big.Int // GasPrice × SuggestedGasLimit，由提交引擎回填
}

// CallMsg 合约调用参数（估算 gas 和只读调用共用）
type CallMsg struct {
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int
}

// Receipt 交易上链确认回执
type Receipt struct {
	TxHash            string
	BlockNumber       uint64
	GasUsed           uint64
	EffectiveGasPrice *big.Int // 节点不返回时为 nil，调用方回退到报价
	Status            uint64
}

// Ledger 账本节点适配器
//
// 所有方法都是网络调用，失败时返回 *types.NetworkError（超时、连接拒绝）
// 或 *types.NodeRejectedError（节点明确拒绝）。这一层不做任何重试：
// 只有调用方知道重试是否安全（广播是否已经成功过）。
type Ledger interface {
	ChainID(ctx context.Context) (*big.Int, error)
	FeeQuote(ctx context.Context) (*FeeQuote, error)
	EstimateGas(ctx context.Context, msg CallMsg) (uint64, error)
	PendingNonce(ctx context.Context, address common.Address) (uint64, error)
	Balance(ctx context.Context, address common.Address) (*big.Int, error)
	Call(ctx context.Context, msg CallMsg) ([]byte, error)
	Broadcast(ctx context.Context, rawTx string) (string, error)
	AwaitReceipt(ctx context.Context, txHash string) (*Receipt, error)
}
