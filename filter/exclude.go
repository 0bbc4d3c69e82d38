package filter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/pizzakit/core"
)

// ExcludeFilter 是排除过滤器，过滤掉不可推荐的披萨：
// 1. Items 静态排除列表（配置下发）
// 2. Store 中的售罄列表（key = UnavailableKey，JSON 字符串数组）
// 3. Store 中的顾客不喜欢列表（key = {DislikePrefix}:{customerID}）
type ExcludeFilter struct {
	// Items 是内存中的排除披萨名列表
	Items []string

	// Store 用于读取售罄/不喜欢列表（可选）
	Store core.Store

	// UnavailableKey 是售罄列表的 key，默认 "menu:unavailable"
	UnavailableKey string

	// DislikePrefix 是顾客不喜欢列表的 key 前缀，默认 "customer:dislike"
	DislikePrefix string
}

func (f *ExcludeFilter) Name() string {
	return "filter.exclude"
}

func (f *ExcludeFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	// 从内存列表检查
	for _, name := range f.Items {
		if item.ID == name {
			return true, nil
		}
	}

	if f.Store == nil {
		return false, nil
	}

	// 售罄列表
	key := f.UnavailableKey
	if key == "" {
		key = "menu:unavailable"
	}
	if names, err := f.readList(ctx, key); err == nil {
		for _, name := range names {
			if item.ID == name {
				return true, nil
			}
		}
	}

	// 顾客不喜欢列表
	if rctx != nil && rctx.CustomerID != 0 {
		prefix := f.DislikePrefix
		if prefix == "" {
			prefix = "customer:dislike"
		}
		dislikeKey := fmt.Sprintf("%s:%d", prefix, rctx.CustomerID)
		if names, err := f.readList(ctx, dislikeKey); err == nil {
			for _, name := range names {
				if item.ID == name {
					return true, nil
				}
			}
		}
	}

	return false, nil
}

func (f *ExcludeFilter) readList(ctx context.Context, key string) ([]string, error) {
	data, err := f.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}
