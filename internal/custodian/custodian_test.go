package custodian

import (
	"context"
	"crypto/ecdsa"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockKeySource 模拟密钥来源，记录解析次数
type MockKeySource struct {
	key          *ecdsa.PrivateKey
	resolveCount int64
	delay        time.Duration
}

func (m *MockKeySource) ResolveKey(ctx context.Context) (*ecdsa.PrivateKey, error) {
	atomic.AddInt64(&m.resolveCount, 1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.key, nil
}

func (m *MockKeySource) Describe() string {
	return "mock key source"
}

func TestSignerIdempotent(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	source := &MockKeySource{key: key}
	cust := New(source, 11155111)

	ctx := context.Background()
	first, err := cust.Signer(ctx)
	require.NoError(t, err)

	second, err := cust.Signer(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&source.resolveCount))
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), first.Address())
}

// TestSignerSingleFlight 首次解析完成前的并发调用共享同一次解析
func TestSignerSingleFlight(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	// 解析故意放慢，保证所有 goroutine 都赶在首次解析完成之前进入
	source := &MockKeySource{key: key, delay: 50 * time.Millisecond}
	cust := New(source, 11155111)

	const callers = 16
	identities := make([]*SigningIdentity, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			identity, err := cust.Signer(context.Background())
			assert.NoError(t, err)
			identities[i] = identity
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&source.resolveCount))
	for i := 1; i < callers; i++ {
		assert.Same(t, identities[0], identities[i])
	}
}

func TestSignerChainIDBinding(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	cust := New(&MockKeySource{key: key}, 1)
	identity, err := cust.Signer(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(1), identity.ChainID().Uint64())
}
