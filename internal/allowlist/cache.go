// Package allowlist 维护管理员/版主钱包白名单的进程内缓存。
// 过期的"是"是安全风险：条目超过 TTL 后一律同步重拉，绝不拿陈旧数据作答。
package allowlist

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/rs/zerolog/log"

	"github.com/certledger/chain-service/internal/metrics"
)

// DefaultTTL 白名单缓存有效期
const DefaultTTL = 5 * time.Minute

// Role 钱包角色
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Fetcher 白名单来源（secrets.AllowListSource 实现此接口）
type Fetcher interface {
	Fetch(ctx context.Context) (admins []string, moderators []string, err error)
}

// snapshot 一次拉取的完整白名单快照
// 刷新通过整体替换指针完成，读方不会观察到半更新状态
type snapshot struct {
	admins     map[string]struct{}
	moderators map[string]struct{}
	fetchedAt  time.Time
}

// Cache 钱包授权缓存
//
// 拉取失败原样上抛（通常是 *types.NetworkError），不回退陈旧数据也不
// 默认拒绝：如何降级是业务层的决定，本模块没有业务语境。
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	clock   time2.Clock
	metrics *metrics.Service

	mu   sync.RWMutex
	snap *snapshot
}

// NewCache 创建白名单缓存；ttl <= 0 时使用 DefaultTTL
func NewCache(fetcher Fetcher, ttl time.Duration, clock time2.Clock, m *metrics.Service) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time2.DefaultClock
	}
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		clock:   clock,
		metrics: m,
	}
}

// IsAdmin 判断地址是否在管理员名单中
func (c *Cache) IsAdmin(ctx context.Context, address string) (bool, error) {
	snap, err := c.current(ctx)
	if err != nil {
		return false, err
	}
	_, ok := snap.admins[normalize(address)]
	return ok, nil
}

// IsModerator 判断地址是否在版主名单中
func (c *Cache) IsModerator(ctx context.Context, address string) (bool, error) {
	snap, err := c.current(ctx)
	if err != nil {
		return false, err
	}
	_, ok := snap.moderators[normalize(address)]
	return ok, nil
}

// RoleOf 返回地址的角色；管理员名单优先（实践中 admin 是 moderator 的超集）
func (c *Cache) RoleOf(ctx context.Context, address string) (Role, bool, error) {
	snap, err := c.current(ctx)
	if err != nil {
		return "", false, err
	}

	key := normalize(address)
	if _, ok := snap.admins[key]; ok {
		return RoleAdmin, true, nil
	}
	if _, ok := snap.moderators[key]; ok {
		return RoleModerator, true, nil
	}
	return "", false, nil
}

// current 返回未过期的快照，过期则同步重拉后再作答
func (c *Cache) current(ctx context.Context) (*snapshot, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	if snap != nil && c.clock.Now().Sub(snap.fetchedAt) < c.ttl {
		return snap, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// 等锁期间别的调用可能已经刷新过了
	if c.snap != nil && c.clock.Now().Sub(c.snap.fetchedAt) < c.ttl {
		return c.snap, nil
	}

	admins, moderators, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	fresh := &snapshot{
		admins:     toSet(admins),
		moderators: toSet(moderators),
		fetchedAt:  c.clock.Now(),
	}
	c.snap = fresh

	if c.metrics != nil {
		c.metrics.AllowListRefreshes.Inc()
	}
	log.Debug().
		Int("admins", len(fresh.admins)).
		Int("moderators", len(fresh.moderators)).
		Msg("Wallet allow list refreshed")

	return fresh, nil
}

// normalize 地址统一转小写，避免校验和大小写差异造成漏判
func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func toSet(addresses []string) map[string]struct{} {
	set := make(map[string]struct{}, len(addresses))
	for _, addr := range addresses {
		if addr == "" {
			continue
		}
		set[normalize(addr)] = struct{}{}
	}
	return set
}
