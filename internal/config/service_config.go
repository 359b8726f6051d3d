package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Network 目标链网络配置
type Network struct {
	Name    string // "mainnet" 或 "sepolia"
	RPCURL  string
	ChainID uint64
}

// Keystore 签名密钥来源配置
// Source 只在启动时选定一次，进程生命周期内不变
type Keystore struct {
	Source     string // "file" 或 "vault"
	Path       string // Source=file：加密 keystore 文件路径
	Passphrase string // Source=file：解密口令
	SecretName string // Source=vault：Secrets Manager 密钥名
	Region     string // Source=vault：AWS region
}

// AllowList 管理员/版主钱包白名单配置
type AllowList struct {
	SecretName     string
	AdminField     string // 白名单 payload 中管理员地址数组的字段名
	ModeratorField string // 版主地址数组的字段名
	TTL            time.Duration
}

// Contracts 证书登记合约配置
type Contracts struct {
	CertRegistryAddress string // 证书登记合约地址（当前网络）
}

// Logger 日志配置
type Logger struct {
	Level              string
	PrettyPrintConsole bool
}

// Service 服务配置根结构，通过构造函数显式注入各组件
type Service struct {
	Network   Network
	Keystore  Keystore
	AllowList AllowList
	Contracts Contracts
	Logger    Logger
}

// 各网络的默认 RPC 端点，可被 CHAIN_RPC_URL 覆盖
var defaultRPCURLs = map[string]string{
	"mainnet": "https://eth.llamarpc.com",
	"sepolia": "https://rpc.sepolia.org",
}

var chainIDs = map[string]uint64{
	"mainnet": 1,
	"sepolia": 11155111,
}

// DefaultServiceConfigFromEnv 从环境变量加载服务配置
func DefaultServiceConfigFromEnv() Service {
	v := viper.New()
	v.SetEnvPrefix("CERTSVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain.network", "sepolia")
	v.SetDefault("chain.rpc_url", "")
	v.SetDefault("keystore.source", "file")
	v.SetDefault("keystore.path", "")
	v.SetDefault("keystore.passphrase", "")
	v.SetDefault("keystore.secret_name", "")
	v.SetDefault("keystore.region", "us-east-1")
	v.SetDefault("allowlist.secret_name", "certledger/wallet-allowlist")
	v.SetDefault("allowlist.admin_field", "adminWallets")
	v.SetDefault("allowlist.moderator_field", "moderatorWallets")
	v.SetDefault("allowlist.ttl", 5*time.Minute)
	v.SetDefault("contracts.cert_registry", "")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.pretty_print_console", false)

	network := v.GetString("chain.network")
	rpcURL := v.GetString("chain.rpc_url")
	if rpcURL == "" {
		rpcURL = defaultRPCURLs[network]
	}

	return Service{
		Network: Network{
			Name:    network,
			RPCURL:  rpcURL,
			ChainID: chainIDs[network],
		},
		Keystore: Keystore{
			Source:     v.GetString("keystore.source"),
			Path:       v.GetString("keystore.path"),
			Passphrase: v.GetString("keystore.passphrase"),
			SecretName: v.GetString("keystore.secret_name"),
			Region:     v.GetString("keystore.region"),
		},
		AllowList: AllowList{
			SecretName:     v.GetString("allowlist.secret_name"),
			AdminField:     v.GetString("allowlist.admin_field"),
			ModeratorField: v.GetString("allowlist.moderator_field"),
			TTL:            v.GetDuration("allowlist.ttl"),
		},
		Contracts: Contracts{
			CertRegistryAddress: v.GetString("contracts.cert_registry"),
		},
		Logger: Logger{
			Level:              v.GetString("logger.level"),
			PrettyPrintConsole: v.GetBool("logger.pretty_print_console"),
		},
	}
}
