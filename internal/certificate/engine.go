package certificate

import (
	"context"
	"math/big"
	"strings"

	"github.com/dropbox/godropbox/time2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/certledger/chain-service/internal/chain"
	"github.com/certledger/chain-service/internal/custodian"
	"github.com/certledger/chain-service/internal/metrics"
	"github.com/certledger/chain-service/internal/types"
)

// Engine 证书上链提交引擎
//
// 一次提交严格按顺序执行：取签名身份 → 费用报价 → gas 估算 → 签名广播 →
// 等待回执。广播之后不做任何自动重试：广播后、确认前的失败是模糊状态
// （交易可能仍在 pending），盲目重试会造成重复上链，由调用方凭交易哈希
// 先行核实后再决定是否重发。
type Engine struct {
	custodian *custodian.Custodian
	ledger    chain.Ledger
	registry  common.Address
	metrics   *metrics.Service
	clock     time2.Clock
}

// NewEngine 创建提交引擎
func NewEngine(cust *custodian.Custodian, ledger chain.Ledger, registry common.Address, m *metrics.Service, clock time2.Clock) *Engine {
	if clock == nil {
		clock = time2.DefaultClock
	}
	return &Engine{
		custodian: cust,
		ledger:    ledger,
		registry:  registry,
		metrics:   m,
		clock:     clock,
	}
}

// paddedGasLimit 在估算值上加 20% 余量，向上取整
// 估算与实际挖出区块之间的状态漂移可能让实际用量略高于估算
func paddedGasLimit(estimated uint64) uint64 {
	return (estimated*12 + 9) / 10
}

// RecordCertificate 把一条证书记录提交上链并等待确认
func (e *Engine) RecordCertificate(ctx context.Context, req *Request) (*Outcome, error) {
	if req.CertificateNumber == "" {
		return nil, e.fail("validation", &types.ConfigurationError{
			Setting: "certificateNumber",
			Reason:  "certificate number is required",
		})
	}
	if req.CompletedAt.IsZero() {
		return nil, e.fail("validation", &types.ConfigurationError{
			Setting: "completedAt",
			Reason:  "completion date is required",
		})
	}

	identity, err := e.custodian.Signer(ctx)
	if err != nil {
		return nil, e.fail("signer", err)
	}

	quote, err := e.ledger.FeeQuote(ctx)
	if err != nil {
		return nil, e.fail("fee_quote", err)
	}

	data, err := packIssueCall(req)
	if err != nil {
		return nil, e.fail("abi_pack", err)
	}

	msg := chain.CallMsg{
		From: identity.Address(),
		To:   e.registry,
		Data: data,
	}

	estimated, err := e.ledger.EstimateGas(ctx, msg)
	if err != nil {
		if isInsufficientFunds(err) {
			balance, balErr := e.ledger.Balance(ctx, identity.Address())
			if balErr != nil {
				// 余额查询也失败了，保底返回原始估算错误
				return nil, e.fail("estimate_gas", err)
			}
			return nil, e.fail("insufficient_funds", &types.InsufficientFundsError{Balance: balance})
		}
		return nil, e.fail("estimate_gas", err)
	}

	gasLimit := paddedGasLimit(estimated)
	quote.SuggestedGasLimit = gasLimit
	quote.EstimatedCost = new(big.Int).Mul(quote.GasPrice, new(big.Int).SetUint64(gasLimit))

	nonce, err := e.ledger.PendingNonce(ctx, identity.Address())
	if err != nil {
		return nil, e.fail("nonce", err)
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: quote.GasPrice,
		Gas:      gasLimit,
		To:       &e.registry,
		Value:    big.NewInt(0),
		Data:     data,
	})

	signed, err := identity.SignTx(tx)
	if err != nil {
		return nil, e.fail("sign", errors.Wrap(err, "failed to sign transaction"))
	}

	rawBytes, err := signed.MarshalBinary()
	if err != nil {
		return nil, e.fail("sign", errors.Wrap(err, "failed to encode signed transaction"))
	}

	broadcastAt := e.clock.Now()

	txHash, err := e.ledger.Broadcast(ctx, hexutil.Encode(rawBytes))
	if err != nil {
		return nil, e.fail("broadcast", err)
	}

	log.Info().
		Str("tx_hash", txHash).
		Str("certificate_number", req.CertificateNumber).
		Uint64("gas_limit", gasLimit).
		Str("estimated_cost_wei", quote.EstimatedCost.String()).
		Msg("Certificate transaction broadcast, awaiting receipt")

	receipt, err := e.ledger.AwaitReceipt(ctx, txHash)
	if err != nil {
		// 交易可能仍在 pending，把哈希带出去供调用方核实
		return nil, e.fail("await_receipt", errors.Wrapf(err, "receipt wait failed for tx %s", txHash))
	}

	if receipt.Status == 0 {
		return nil, e.fail("reverted", &types.NodeRejectedError{
			Op:      "issueCertificate",
			Message: "transaction reverted on chain: " + receipt.TxHash,
		})
	}

	// 回执里没有实际单价时回退到广播前的报价
	effectivePrice := receipt.EffectiveGasPrice
	if effectivePrice == nil {
		effectivePrice = quote.GasPrice
	}
	cost := new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), effectivePrice)

	if e.metrics != nil {
		e.metrics.CertificatesRecorded.Inc()
	}

	log.Info().
		Str("tx_hash", receipt.TxHash).
		Uint64("block_number", receipt.BlockNumber).
		Uint64("gas_used", receipt.GasUsed).
		Str("cost_wei", cost.String()).
		Dur("elapsed", e.clock.Now().Sub(broadcastAt)).
		Msg("Certificate recorded on chain")

	return &Outcome{
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
		GasUsed:     receipt.GasUsed,
		Cost:        cost,
		ConfirmedAt: e.clock.Now(),
	}, nil
}

// packIssueCall 打包 issueCertificate 调用参数
// 小数字段在这里截断为整数（链上没有小数类型，有损转换是业务确认过的）
func packIssueCall(req *Request) ([]byte, error) {
	studentWallet := common.Address{}
	if common.IsHexAddress(req.StudentWallet) {
		studentWallet = common.HexToAddress(req.StudentWallet)
	}

	data, err := registryABI.Pack("issueCertificate",
		req.CertificateNumber,
		req.StudentName,
		studentWallet,
		req.CourseTitle,
		req.Instructor,
		big.NewInt(req.CompletedAt.Unix()),
		req.Grade,
		big.NewInt(int64(req.FinalScore)),
		big.NewInt(int64(req.TotalHours)),
		new(big.Int).SetUint64(req.TotalLessons),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack issueCertificate call")
	}
	return data, nil
}

// isInsufficientFunds 判断节点拒绝原因是否为余额不足
func isInsufficientFunds(err error) bool {
	var rejected *types.NodeRejectedError
	if !errors.As(err, &rejected) {
		return false
	}
	return strings.Contains(strings.ToLower(rejected.Message), "insufficient funds")
}

// fail 记录失败指标后原样返回错误
func (e *Engine) fail(kind string, err error) error {
	if e.metrics != nil {
		e.metrics.SubmissionFailures.WithLabelValues(kind).Inc()
	}
	return err
}
