package secrets

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certledger/chain-service/internal/types"
)

// MockVaultClient 模拟远端密钥库
type MockVaultClient struct {
	secrets map[string]string
	err     error
}

func (m *MockVaultClient) SecretString(ctx context.Context, name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	value, ok := m.secrets[name]
	if !ok {
		return "", &types.NetworkError{Op: "secretsmanager.GetSecretValue"}
	}
	return value, nil
}

func TestVaultKeySourceResolveKey(t *testing.T) {
	ctx := context.Background()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	keyHex := "0x" + hex.EncodeToString(crypto.FromECDSA(key))

	client := &MockVaultClient{secrets: map[string]string{
		"certledger/signer": `{"privateKey": "` + keyHex + `"}`,
	}}

	source := NewVaultKeySource(client, "certledger/signer")
	resolved, err := source.ResolveKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(resolved.PublicKey))
}

func TestVaultKeySourceMissingField(t *testing.T) {
	ctx := context.Background()
	client := &MockVaultClient{secrets: map[string]string{
		"certledger/signer": `{"something": "else"}`,
	}}

	source := NewVaultKeySource(client, "certledger/signer")
	_, err := source.ResolveKey(ctx)
	require.Error(t, err)

	var cfgErr *types.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestVaultKeySourceFetchFailure(t *testing.T) {
	ctx := context.Background()
	client := &MockVaultClient{err: &types.NetworkError{Op: "secretsmanager.GetSecretValue"}}

	source := NewVaultKeySource(client, "certledger/signer")
	_, err := source.ResolveKey(ctx)
	require.Error(t, err)

	var netErr *types.NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestAllowListSourceFetch(t *testing.T) {
	ctx := context.Background()
	client := &MockVaultClient{secrets: map[string]string{
		"certledger/wallets": `{
			"adminWallets": ["0xAAAA000000000000000000000000000000000001"],
			"moderatorWallets": ["0xBBBB000000000000000000000000000000000002", "0xCCCC000000000000000000000000000000000003"]
		}`,
	}}

	source := NewAllowListSource(client, "certledger/wallets", "adminWallets", "moderatorWallets")
	admins, moderators, err := source.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
	assert.Len(t, moderators, 2)
}

// TestAllowListSourceFieldNamesFromConfig 字段名由配置一次性选定，不做形状探测
func TestAllowListSourceFieldNamesFromConfig(t *testing.T) {
	ctx := context.Background()
	client := &MockVaultClient{secrets: map[string]string{
		"certledger/wallets": `{"wallets": ["0xAAAA000000000000000000000000000000000001"]}`,
	}}

	// 这个部署把管理员名单放在 wallets 字段
	source := NewAllowListSource(client, "certledger/wallets", "wallets", "moderatorWallets")
	admins, moderators, err := source.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
	assert.Empty(t, moderators)

	// 配错字段名时不会退回去猜别的字段
	source = NewAllowListSource(client, "certledger/wallets", "adminWallets", "moderatorWallets")
	admins, moderators, err = source.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, admins)
	assert.Empty(t, moderators)
}
