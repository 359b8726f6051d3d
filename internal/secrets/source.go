// Package secrets 封装签名密钥与钱包白名单的两种来源：
// 本地加密 keystore 文件，或远端 Secrets Manager。
// 来源在启动时由配置选定一次，进程生命周期内不变。
package secrets

import (
	"context"
	"crypto/ecdsa"
)

// KeySource 签名密钥来源
// ResolveKey 只会被 Key Custodian 调用一次（single-flight），实现方不需要做缓存
type KeySource interface {
	ResolveKey(ctx context.Context) (*ecdsa.PrivateKey, error)

	// Describe 返回可安全记入日志的来源描述（不含任何敏感信息）
	Describe() string
}
