package certificate

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certledger/chain-service/internal/chain"
	"github.com/certledger/chain-service/internal/types"
)

// storedCertificate fakeRegistry 里的一条链上记录
type storedCertificate struct {
	studentName string
	courseTitle string
	instructor  string
	completedAt *big.Int
	grade       string
	finalScore  *big.Int
}

// fakeRegistry 内存版证书登记合约：解码广播交易入库，响应只读查询
// 用于提交引擎和查询器的端到端回归
type fakeRegistry struct {
	mu      sync.Mutex
	records map[string]*storedCertificate
	nonce   uint64
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{records: make(map[string]*storedCertificate)}
}

func (f *fakeRegistry) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(11155111), nil
}

func (f *fakeRegistry) FeeQuote(ctx context.Context) (*chain.FeeQuote, error) {
	return &chain.FeeQuote{GasPrice: big.NewInt(1_000_000_000)}, nil
}

func (f *fakeRegistry) EstimateGas(ctx context.Context, msg chain.CallMsg) (uint64, error) {
	return 150000, nil
}

func (f *fakeRegistry) PendingNonce(ctx context.Context, address common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonce, nil
}

func (f *fakeRegistry) Balance(ctx context.Context, address common.Address) (*big.Int, error) {
	return big.NewInt(1_000_000_000_000_000_000), nil
}

func (f *fakeRegistry) Broadcast(ctx context.Context, rawTx string) (string, error) {
	tx := new(ethtypes.Transaction)
	if err := tx.UnmarshalBinary(hexutil.MustDecode(rawTx)); err != nil {
		return "", errors.Wrap(err, "fake registry cannot decode raw tx")
	}

	method := registryABI.Methods["issueCertificate"]
	values, err := method.Inputs.Unpack(tx.Data()[4:])
	if err != nil {
		return "", errors.Wrap(err, "fake registry cannot unpack issue call")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nonce++
	f.records[values[0].(string)] = &storedCertificate{
		studentName: values[1].(string),
		courseTitle: values[3].(string),
		instructor:  values[4].(string),
		completedAt: values[5].(*big.Int),
		grade:       values[6].(string),
		finalScore:  values[7].(*big.Int),
	}

	return tx.Hash().Hex(), nil
}

func (f *fakeRegistry) AwaitReceipt(ctx context.Context, txHash string) (*chain.Receipt, error) {
	return &chain.Receipt{
		TxHash:            txHash,
		BlockNumber:       42,
		GasUsed:           140000,
		EffectiveGasPrice: big.NewInt(1_000_000_000),
		Status:            1,
	}, nil
}

func (f *fakeRegistry) Call(ctx context.Context, msg chain.CallMsg) ([]byte, error) {
	method := registryABI.Methods["getCertificate"]
	values, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, errors.Wrap(err, "fake registry cannot unpack get call")
	}

	f.mu.Lock()
	record, ok := f.records[values[0].(string)]
	f.mu.Unlock()

	if !ok {
		return method.Outputs.Pack(false, "", "", "", big.NewInt(0), "", big.NewInt(0))
	}
	return method.Outputs.Pack(true, record.studentName, record.courseTitle, record.instructor,
		record.completedAt, record.grade, record.finalScore)
}

// TestRecordThenVerifyRoundTrip 上链后的记录必须能按编号查回，且分数已截断
func TestRecordThenVerifyRoundTrip(t *testing.T) {
	ctx := context.Background()
	registry := newFakeRegistry()

	engine := NewEngine(newTestCustodian(t), registry, testRegistry, nil, time2.NewMockClock(time.Now()))
	reader := NewReader(registry, testRegistry, nil)

	req := validRequest() // FinalScore 94.7
	outcome, err := engine.RecordCertificate(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.TxHash)

	result, err := reader.Verify(ctx, req.CertificateNumber)
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, "Ada Lovelace", result.StudentName)
	assert.Equal(t, "Distributed Systems", result.CourseTitle)
	assert.Equal(t, "Barbara Liskov", result.Instructor)
	assert.Equal(t, "A", result.Grade)
	assert.Equal(t, int64(94), result.FinalScore) // 94.7 截断为 94
	assert.True(t, req.CompletedAt.Equal(result.CompletedAt))
}

func TestVerifyUnknownCertificate(t *testing.T) {
	ctx := context.Background()
	reader := NewReader(newFakeRegistry(), testRegistry, nil)

	// 不存在的编号是正常的业务结果，不是错误
	result, err := reader.Verify(ctx, "UNKNOWN-ID")
	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestVerifyPublicCollapsesErrors(t *testing.T) {
	ctx := context.Background()

	// mockLedger 的 Call 永远返回网络错误
	broken := &mockLedger{}
	reader := NewReader(broken, testRegistry, nil)

	// 内部 API 区分网络错误和"不存在"
	_, err := reader.Verify(ctx, "CERT-2024-0001")
	require.Error(t, err)
	var netErr *types.NetworkError
	assert.ErrorAs(t, err, &netErr)

	// 信任边界外的 API 对外收口为"未找到"，不泄露基础设施状态
	result := reader.VerifyPublic(ctx, "CERT-2024-0001")
	assert.False(t, result.Found)
}
