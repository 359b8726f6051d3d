// Package guard 实现支付合约地址的一致性校验。
// 本地固化的地址表是唯一可信来源，服务端响应里报告的地址是不可信输入；
// 两者不一致时支付流程必须整体中止，这个校验是前置门禁而不是事后审计。
package guard

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Guard 地址一致性校验器
type Guard struct {
	// registries 按链 ID 固化的支付登记合约地址表
	// 随代码版本发布，运行时不可变，服务端无法影响
	registries map[uint64]string
}

// DefaultRegistries 当前支持网络的支付登记合约地址
// 新增部署网络时必须同步固化非零地址，否则该链的校验会直接放行
var DefaultRegistries = map[uint64]string{
	1:        "0x8Ba1f109551bD432803012645Ac136ddd64DBA72", // mainnet
	11155111: "0x5FbDB2315678afecb367f032d93F642f64180aa3", // sepolia
}

// New 创建校验器；table 为 nil 时使用 DefaultRegistries
func New(table map[uint64]string) *Guard {
	if table == nil {
		table = DefaultRegistries
	}
	return &Guard{registries: table}
}

// VerifyRegistry 校验服务端报告的支付登记合约地址
//
// 链 ID 不在表中时放行（该网络没有配置预期，fail-open）：这是有意的
// "未配置放行、已配置严判"策略，调用方应把未配置网络视为低保证等级。
// 地址比较忽略大小写（链上地址本身不分大小写，展示时常带混合大小写校验和）。
func (g *Guard) VerifyRegistry(chainID uint64, serverReportedAddress string) bool {
	expected, ok := g.registries[chainID]
	if !ok {
		log.Warn().
			Uint64("chain_id", chainID).
			Msg("No pinned registry address for chain, allowing with lower assurance")
		return true
	}

	if !strings.EqualFold(expected, serverReportedAddress) {
		log.Error().
			Uint64("chain_id", chainID).
			Str("expected", expected).
			Str("reported", serverReportedAddress).
			Msg("SECURITY: server reported registry address does not match pinned table, payment flow must abort")
		return false
	}

	return true
}

// VerifyTokenContract 校验服务端报告的代币合约地址与链上查询结果是否一致
func (g *Guard) VerifyTokenContract(onchainAddress, serverReportedAddress string) bool {
	if !strings.EqualFold(onchainAddress, serverReportedAddress) {
		log.Error().
			Str("onchain", onchainAddress).
			Str("reported", serverReportedAddress).
			Msg("SECURITY: server reported token contract does not match on-chain address, payment flow must abort")
		return false
	}
	return true
}
