package engine

import (
	"context"
	"sync"
	"time"

	"sigflow/pkg/hyper/types"
	"sigflow/pkg/logger"

	"github.com/spf13/cast"
	"golang.org/x/sync/singleflight"
)

// 资产元数据缓存：全进程共享一份快照，带TTL
// 刷新走 singleflight，并发请求合并成一次底层拉取

// AssetMeta 每个交易对的元数据
type AssetMeta struct {
	ID         int // 资产在 universe 里的下标
	Name       string
	SzDecimals int
}

// MarketContext 行情上下文里下单需要的部分
type MarketContext struct {
	MidPrice  float64
	MarkPrice float64
}

// Snapshot 一次拉取的完整结果，只整体替换不原地修改
type Snapshot struct {
	FetchedAt time.Time
	Assets    map[string]AssetMeta
	Contexts  map[string]MarketContext
}

// MetadataFetcher 元数据来源，pkg/hyper/rest 的 Client 实现了它
type MetadataFetcher interface {
	PerpetualAssetContexts(ctx context.Context) ([]types.UniverseItem, []types.AssetContext, error)
}

type MetadataCache struct {
	fetcher MetadataFetcher
	ttl     time.Duration

	mu    sync.RWMutex
	snap  *Snapshot
	group singleflight.Group
}

func NewMetadataCache(fetcher MetadataFetcher, ttl time.Duration) *MetadataCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MetadataCache{fetcher: fetcher, ttl: ttl}
}

// Snapshot 取一份可用的快照
// blocking: 过期时等待刷新完成；否则先用旧数据，后台刷新
// 从未拉取过时两种模式都会等待
func (c *MetadataCache) Snapshot(ctx context.Context, blocking bool) (*Snapshot, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	if snap != nil && time.Since(snap.FetchedAt) < c.ttl {
		return snap, nil
	}

	if snap != nil && !blocking {
		go func() {
			if _, err := c.Refresh(context.Background()); err != nil {
				logger.Errorf("metadata background refresh failed: %v", err)
			}
		}()
		return snap, nil
	}

	return c.Refresh(ctx)
}

// Refresh 强制刷新；并发调用共享同一次拉取，结束后立即清除在途标记
func (c *MetadataCache) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := c.group.Do("metadata", func() (interface{}, error) {
		universe, contexts, err := c.fetcher.PerpetualAssetContexts(ctx)
		if err != nil {
			return nil, err
		}
		snap := buildSnapshot(universe, contexts)
		c.mu.Lock()
		c.snap = snap
		c.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func buildSnapshot(universe []types.UniverseItem, contexts []types.AssetContext) *Snapshot {
	snap := &Snapshot{
		FetchedAt: time.Now(),
		Assets:    make(map[string]AssetMeta, len(universe)),
		Contexts:  make(map[string]MarketContext, len(universe)),
	}
	for i, item := range universe {
		snap.Assets[item.Name] = AssetMeta{
			ID:         i,
			Name:       item.Name,
			SzDecimals: item.SzDecimals,
		}
		// universe 和 assetCtxs 按相同下标对齐
		if i < len(contexts) {
			snap.Contexts[item.Name] = MarketContext{
				MidPrice:  cast.ToFloat64(contexts[i].MidPx),
				MarkPrice: cast.ToFloat64(contexts[i].MarkPx),
			}
		}
	}
	return snap
}
