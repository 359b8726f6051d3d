package secrets

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/certledger/chain-service/internal/types"
)

// VaultClient 远端密钥库客户端接口（便于测试替换）
type VaultClient interface {
	SecretString(ctx context.Context, name string) (string, error)
}

// AWSVault AWS Secrets Manager 客户端
type AWSVault struct {
	client *secretsmanager.Client
}

// NewAWSVault 创建 Secrets Manager 客户端
func NewAWSVault(ctx context.Context, region string) (*AWSVault, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return &AWSVault{
		client: secretsmanager.NewFromConfig(cfg),
	}, nil
}

// SecretString 获取密钥的字符串内容
func (v *AWSVault) SecretString(ctx context.Context, name string) (string, error) {
	out, err := v.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &name,
	})
	if err != nil {
		return "", &types.NetworkError{Op: "secretsmanager.GetSecretValue", Err: err}
	}
	if out.SecretString == nil {
		return "", &types.ConfigurationError{
			Setting: name,
			Reason:  "secret has no string payload",
		}
	}
	return *out.SecretString, nil
}

// VaultKeySource 从远端密钥库的结构化 payload 中解出签名密钥
// payload 必须含有 privateKey 字段（hex 编码的私钥）
type VaultKeySource struct {
	client     VaultClient
	secretName string
}

// NewVaultKeySource 创建远端密钥来源
func NewVaultKeySource(client VaultClient, secretName string) *VaultKeySource {
	return &VaultKeySource{
		client:     client,
		secretName: secretName,
	}
}

type keyPayload struct {
	PrivateKey string `json:"privateKey"`
}

// ResolveKey 拉取并解析私钥字段
func (s *VaultKeySource) ResolveKey(ctx context.Context) (*ecdsa.PrivateKey, error) {
	raw, err := s.client.SecretString(ctx, s.secretName)
	if err != nil {
		return nil, err
	}

	var payload keyPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &types.ConfigurationError{
			Setting: s.secretName,
			Reason:  fmt.Sprintf("secret payload is not valid JSON: %v", err),
		}
	}
	if payload.PrivateKey == "" {
		return nil, &types.ConfigurationError{
			Setting: s.secretName,
			Reason:  "secret payload has no privateKey field",
		}
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(payload.PrivateKey, "0x"))
	if err != nil {
		return nil, &types.ConfigurationError{
			Setting: s.secretName,
			Reason:  fmt.Sprintf("privateKey field is not a valid secp256k1 key: %v", err),
		}
	}

	return key, nil
}

// Describe 来源描述
func (s *VaultKeySource) Describe() string {
	return fmt.Sprintf("vault secret %s", s.secretName)
}
