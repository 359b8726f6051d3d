package certificate

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/certledger/chain-service/internal/chain"
	"github.com/certledger/chain-service/internal/metrics"
	"github.com/certledger/chain-service/internal/util"
)

// Reader 证书只读查询器，不需要签名身份
type Reader struct {
	ledger   chain.Ledger
	registry common.Address
	metrics  *metrics.Service
}

// NewReader 创建查询器
func NewReader(ledger chain.Ledger, registry common.Address, m *metrics.Service) *Reader {
	return &Reader{
		ledger:   ledger,
		registry: registry,
		metrics:  m,
	}
}

// Verify 按证书编号查询链上记录
//
// 内部 API：网络/节点错误按类型原样返回，和"记录不存在"严格区分，
// 供内部日志与运维诊断使用。面向信任边界外调用方的收口见 VerifyPublic。
func (r *Reader) Verify(ctx context.Context, certificateNumber string) (*Verification, error) {
	data, err := registryABI.Pack("getCertificate", certificateNumber)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack getCertificate call")
	}

	out, err := r.ledger.Call(ctx, chain.CallMsg{
		To:   r.registry,
		Data: data,
	})
	if err != nil {
		r.count("error")
		return nil, err
	}

	values, err := registryABI.Unpack("getCertificate", out)
	if err != nil {
		r.count("error")
		return nil, errors.Wrap(err, "failed to unpack getCertificate result")
	}

	exists, ok := values[0].(bool)
	if !ok || !exists {
		r.count("not_found")
		return &Verification{Found: false}, nil
	}

	completedAt := values[4].(*big.Int)
	finalScore := values[6].(*big.Int)

	r.count("found")
	return &Verification{
		Found:       true,
		StudentName: values[1].(string),
		CourseTitle: values[2].(string),
		Instructor:  values[3].(string),
		CompletedAt: time.Unix(completedAt.Int64(), 0).UTC(),
		Grade:       values[5].(string),
		FinalScore:  finalScore.Int64(),
	}, nil
}

// VerifyPublic 面向不可信调用方的查询
//
// 任何网络/节点错误对外统一收口为"未找到"：外部验证者不应该能区分
// "记录不存在"和"节点不可达"，避免泄露基础设施状态。错误在内部照常记日志。
func (r *Reader) VerifyPublic(ctx context.Context, certificateNumber string) *Verification {
	result, err := r.Verify(ctx, certificateNumber)
	if err != nil {
		util.LogFromContext(ctx).Error().
			Err(err).
			Str("certificate_number", certificateNumber).
			Msg("Certificate verification failed, collapsing to not-found for external caller")
		return &Verification{Found: false}
	}
	return result
}

func (r *Reader) count(outcome string) {
	if r.metrics != nil {
		r.metrics.VerificationLookups.WithLabelValues(outcome).Inc()
	}
}
