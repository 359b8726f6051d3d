package types

import (
	"fmt"
	"math/big"
)

// ConfigurationError 配置缺失或无效（对本次操作是致命的，不可重试）
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}

// AuthenticationError 密钥口令错误（需要运维人员介入，不可自动重试）
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.Reason)
}

// NetworkError 节点或 Vault 暂时不可达（调用方可带退避重试）
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NodeRejectedError 节点明确拒绝了调用（请求本身有问题，重试无意义）
type NodeRejectedError struct {
	Op      string
	Code    int
	Message string
}

func (e *NodeRejectedError) Error() string {
	return fmt.Sprintf("node rejected %s: %s (code: %d)", e.Op, e.Message, e.Code)
}

// InsufficientFundsError 签名账户余额不足
// 携带查询到的当前余额，供运维告警使用（这是资金问题，不是用户错误）
type InsufficientFundsError struct {
	Balance *big.Int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: current balance %s wei", e.Balance.String())
}

// SecurityViolationError 合约地址校验失败
// 调用方必须立即中止支付流程，不允许重试
type SecurityViolationError struct {
	ChainID  uint64
	Expected string
	Reported string
}

func (e *SecurityViolationError) Error() string {
	return fmt.Sprintf("security violation: chain %d expected contract %s, server reported %s",
		e.ChainID, e.Expected, e.Reported)
}
