package secrets

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/keystore"

	"github.com/certledger/chain-service/internal/types"
)

// EncryptedFileSource 从本地加密 keystore 文件（标准 geth keystore JSON）解出签名密钥
type EncryptedFileSource struct {
	Path       string
	Passphrase string
}

// NewEncryptedFileSource 创建 keystore 文件密钥来源
func NewEncryptedFileSource(path, passphrase string) *EncryptedFileSource {
	return &EncryptedFileSource{
		Path:       path,
		Passphrase: passphrase,
	}
}

// ResolveKey 读取并解密 keystore 文件
// 文件缺失归类为配置错误，解密失败归类为口令错误（需要运维介入）
func (s *EncryptedFileSource) ResolveKey(ctx context.Context) (*ecdsa.PrivateKey, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, &types.ConfigurationError{
			Setting: "keystore.path",
			Reason:  fmt.Sprintf("cannot read keystore file %s: %v", s.Path, err),
		}
	}

	key, err := keystore.DecryptKey(raw, s.Passphrase)
	if err != nil {
		return nil, &types.AuthenticationError{
			Reason: fmt.Sprintf("failed to decrypt keystore %s: %v", s.Path, err),
		}
	}

	return key.PrivateKey, nil
}

// Describe 来源描述
func (s *EncryptedFileSource) Describe() string {
	return fmt.Sprintf("encrypted keystore file %s", s.Path)
}
