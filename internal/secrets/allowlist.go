package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/certledger/chain-service/internal/types"
)

// AllowListSource 从远端密钥库拉取管理员/版主钱包白名单
//
// payload 中地址数组的字段名由配置一次性选定（例如 adminWallets、
// moderatorWallets），不在运行时探测 payload 形状。
type AllowListSource struct {
	client         VaultClient
	secretName     string
	adminField     string
	moderatorField string
}

// NewAllowListSource 创建白名单来源
func NewAllowListSource(client VaultClient, secretName, adminField, moderatorField string) *AllowListSource {
	return &AllowListSource{
		client:         client,
		secretName:     secretName,
		adminField:     adminField,
		moderatorField: moderatorField,
	}
}

// Fetch 拉取白名单，返回管理员与版主地址（未做大小写归一化，由缓存层负责）
func (s *AllowListSource) Fetch(ctx context.Context) (admins []string, moderators []string, err error) {
	raw, err := s.client.SecretString(ctx, s.secretName)
	if err != nil {
		return nil, nil, err
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, nil, &types.ConfigurationError{
			Setting: s.secretName,
			Reason:  fmt.Sprintf("allow list payload is not valid JSON: %v", err),
		}
	}

	admins, err = s.wallets(payload, s.adminField)
	if err != nil {
		return nil, nil, err
	}
	moderators, err = s.wallets(payload, s.moderatorField)
	if err != nil {
		return nil, nil, err
	}

	return admins, moderators, nil
}

func (s *AllowListSource) wallets(payload map[string]json.RawMessage, field string) ([]string, error) {
	raw, ok := payload[field]
	if !ok {
		// 字段缺失视为空列表：某个部署可以只配置管理员名单
		return nil, nil
	}

	var wallets []string
	if err := json.Unmarshal(raw, &wallets); err != nil {
		return nil, &types.ConfigurationError{
			Setting: s.secretName,
			Reason:  fmt.Sprintf("field %s is not an array of addresses: %v", field, err),
		}
	}
	return wallets, nil
}
