package secrets

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certledger/chain-service/internal/types"
)

func TestEncryptedFileSourceResolveKey(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// 用轻量 scrypt 参数生成一个真实的 keystore 文件
	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	account, err := ks.NewAccount("open sesame")
	require.NoError(t, err)

	source := NewEncryptedFileSource(account.URL.Path, "open sesame")
	key, err := source.ResolveKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, account.Address, crypto.PubkeyToAddress(key.PublicKey))
}

func TestEncryptedFileSourceWrongPassphrase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	account, err := ks.NewAccount("correct passphrase")
	require.NoError(t, err)

	source := NewEncryptedFileSource(account.URL.Path, "wrong passphrase")
	_, err = source.ResolveKey(ctx)
	require.Error(t, err)

	var authErr *types.AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestEncryptedFileSourceMissingFile(t *testing.T) {
	ctx := context.Background()

	source := NewEncryptedFileSource(filepath.Join(t.TempDir(), "no-such-keystore.json"), "whatever")
	_, err := source.ResolveKey(ctx)
	require.Error(t, err)

	var cfgErr *types.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
