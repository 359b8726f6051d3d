// Package service 按配置组装子系统组件。
// 所有组件都通过构造函数显式注入，没有进程级单例：初始化顺序和测试替换
// 都是显式的。
package service

import (
	"context"

	"github.com/dropbox/godropbox/time2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/certledger/chain-service/internal/allowlist"
	"github.com/certledger/chain-service/internal/certificate"
	"github.com/certledger/chain-service/internal/chain"
	"github.com/certledger/chain-service/internal/chain/ethereum"
	"github.com/certledger/chain-service/internal/config"
	"github.com/certledger/chain-service/internal/custodian"
	"github.com/certledger/chain-service/internal/guard"
	"github.com/certledger/chain-service/internal/metrics"
	"github.com/certledger/chain-service/internal/secrets"
	"github.com/certledger/chain-service/internal/types"
)

// Components 子系统的全部组件
type Components struct {
	Config    config.Service
	Ledger    chain.Ledger
	Custodian *custodian.Custodian
	Engine    *certificate.Engine
	Reader    *certificate.Reader
	Guard     *guard.Guard
	AllowList *allowlist.Cache
	Metrics   *metrics.Service
}

// New 组装组件；只做配置解析和对象构造，不触发密钥解析或网络调用
func New(ctx context.Context, cfg config.Service) (*Components, error) {
	if cfg.Network.RPCURL == "" {
		return nil, &types.ConfigurationError{
			Setting: "chain.rpc_url",
			Reason:  "no RPC endpoint configured for network " + cfg.Network.Name,
		}
	}
	if !common.IsHexAddress(cfg.Contracts.CertRegistryAddress) {
		return nil, &types.ConfigurationError{
			Setting: "contracts.cert_registry",
			Reason:  "certificate registry address is missing or not a valid address",
		}
	}

	ledger := ethereum.NewRPCClient(cfg.Network.RPCURL)
	registry := common.HexToAddress(cfg.Contracts.CertRegistryAddress)
	m := metrics.New(nil)

	keySource, vault, err := newKeySource(ctx, cfg.Keystore)
	if err != nil {
		return nil, err
	}
	cust := custodian.New(keySource, cfg.Network.ChainID)

	var cache *allowlist.Cache
	if cfg.AllowList.SecretName != "" {
		if vault == nil {
			vault, err = secrets.NewAWSVault(ctx, cfg.Keystore.Region)
			if err != nil {
				return nil, err
			}
		}
		source := secrets.NewAllowListSource(vault, cfg.AllowList.SecretName,
			cfg.AllowList.AdminField, cfg.AllowList.ModeratorField)
		cache = allowlist.NewCache(source, cfg.AllowList.TTL, time2.DefaultClock, m)
	}

	return &Components{
		Config:    cfg,
		Ledger:    ledger,
		Custodian: cust,
		Engine:    certificate.NewEngine(cust, ledger, registry, m, time2.DefaultClock),
		Reader:    certificate.NewReader(ledger, registry, m),
		Guard:     guard.New(nil),
		AllowList: cache,
		Metrics:   m,
	}, nil
}

// newKeySource 按配置选定密钥来源，进程生命周期内不再改变
func newKeySource(ctx context.Context, cfg config.Keystore) (secrets.KeySource, *secrets.AWSVault, error) {
	switch cfg.Source {
	case "file":
		if cfg.Path == "" {
			return nil, nil, &types.ConfigurationError{
				Setting: "keystore.path",
				Reason:  "keystore source is file but no path configured",
			}
		}
		return secrets.NewEncryptedFileSource(cfg.Path, cfg.Passphrase), nil, nil

	case "vault":
		if cfg.SecretName == "" {
			return nil, nil, &types.ConfigurationError{
				Setting: "keystore.secret_name",
				Reason:  "keystore source is vault but no secret name configured",
			}
		}
		vault, err := secrets.NewAWSVault(ctx, cfg.Region)
		if err != nil {
			return nil, nil, err
		}
		return secrets.NewVaultKeySource(vault, cfg.SecretName), vault, nil

	default:
		return nil, nil, &types.ConfigurationError{
			Setting: "keystore.source",
			Reason:  "unknown keystore source " + cfg.Source + " (expected file or vault)",
		}
	}
}
