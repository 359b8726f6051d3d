package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultServiceConfigFromEnv(t *testing.T) {
	cfg := DefaultServiceConfigFromEnv()

	// 默认测试网，避免误把实验流量打到主网
	assert.Equal(t, "sepolia", cfg.Network.Name)
	assert.Equal(t, uint64(11155111), cfg.Network.ChainID)
	assert.NotEmpty(t, cfg.Network.RPCURL)

	assert.Equal(t, "file", cfg.Keystore.Source)
	assert.Equal(t, 5*time.Minute, cfg.AllowList.TTL)
	assert.Equal(t, "adminWallets", cfg.AllowList.AdminField)
	assert.Equal(t, "moderatorWallets", cfg.AllowList.ModeratorField)
}

func TestNetworkRPCOverride(t *testing.T) {
	t.Setenv("CERTSVC_CHAIN_NETWORK", "mainnet")
	t.Setenv("CERTSVC_CHAIN_RPC_URL", "http://localhost:8545")

	cfg := DefaultServiceConfigFromEnv()
	assert.Equal(t, "mainnet", cfg.Network.Name)
	assert.Equal(t, uint64(1), cfg.Network.ChainID)
	assert.Equal(t, "http://localhost:8545", cfg.Network.RPCURL)
}
