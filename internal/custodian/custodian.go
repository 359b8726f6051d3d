// Package custodian 负责进程内唯一签名身份的托管。
// 私钥只存在于本包内部，绝不序列化、绝不写日志、绝不跨进程边界传出。
package custodian

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/certledger/chain-service/internal/secrets"
)

// SigningIdentity 签名身份：包裹私钥的不透明能力对象
// 身份不可变，可被任意多个 goroutine 并发用于签名
type SigningIdentity struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

// Address 返回派生出的公开地址
func (id *SigningIdentity) Address() common.Address {
	return id.address
}

// ChainID 返回身份绑定的链 ID
func (id *SigningIdentity) ChainID() *big.Int {
	return new(big.Int).Set(id.chainID)
}

// SignTx 用托管私钥签名交易
func (id *SigningIdentity) SignTx(tx *ethtypes.Transaction) (*ethtypes.Transaction, error) {
	signer := ethtypes.LatestSignerForChainID(id.chainID)
	return ethtypes.SignTx(tx, signer, id.key)
}

// Custodian 密钥托管器
//
// 首次调用 Signer 时从配置的来源惰性解析密钥；并发的首次调用共享同一个
// in-flight 解析（大 keystore 的解密很贵，重复的 vault 调用浪费配额）。
// 解析成功后整个进程生命周期返回同一个身份。
type Custodian struct {
	source  secrets.KeySource
	chainID *big.Int

	group    singleflight.Group
	mu       sync.RWMutex
	identity *SigningIdentity
}

// New 创建密钥托管器，不触发任何密钥解析
func New(source secrets.KeySource, chainID uint64) *Custodian {
	return &Custodian{
		source:  source,
		chainID: new(big.Int).SetUint64(chainID),
	}
}

// Signer 返回进程唯一的签名身份，幂等且并发安全
func (c *Custodian) Signer(ctx context.Context) (*SigningIdentity, error) {
	c.mu.RLock()
	identity := c.identity
	c.mu.RUnlock()

	if identity != nil {
		return identity, nil
	}

	v, err, _ := c.group.Do("signer", func() (interface{}, error) {
		// 拿到 single-flight 锁后再查一次，晚到的调用直接复用已解析结果
		c.mu.RLock()
		resolved := c.identity
		c.mu.RUnlock()
		if resolved != nil {
			return resolved, nil
		}

		key, err := c.source.ResolveKey(ctx)
		if err != nil {
			return nil, err
		}

		resolved = &SigningIdentity{
			key:     key,
			address: crypto.PubkeyToAddress(key.PublicKey),
			chainID: c.chainID,
		}

		c.mu.Lock()
		c.identity = resolved
		c.mu.Unlock()

		log.Info().
			Str("address", resolved.address.Hex()).
			Str("source", c.source.Describe()).
			Msg("Signing identity resolved")

		return resolved, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*SigningIdentity), nil
}
