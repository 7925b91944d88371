package rest

import (
	"context"
	"encoding/json"
	"fmt"

	"sigflow/pkg/hyper/types"
)

// Hyperliquid 的 info / exchange 接口封装

// infoRequest info 接口统一的请求体
func infoRequest(requestType string, extra map[string]interface{}) map[string]interface{} {
	body := map[string]interface{}{"type": requestType}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

// PerpetualsMetadata 获取永续合约的 universe 元数据
func (c *Client) PerpetualsMetadata(ctx context.Context) (types.Universe, error) {
	var metadata types.Universe
	if err := c.RequestJSON(ctx, "/info", RequestOptions{Body: infoRequest("meta", nil)}, &metadata); err != nil {
		return types.Universe{}, err
	}
	return metadata, nil
}

// PerpetualAssetContexts 获取 universe 和每个资产的行情上下文
// 返回体是 [universe, assetCtxs] 的二元数组
func (c *Client) PerpetualAssetContexts(ctx context.Context) ([]types.UniverseItem, []types.AssetContext, error) {
	var respData []json.RawMessage
	if err := c.RequestJSON(ctx, "/info", RequestOptions{Body: infoRequest("metaAndAssetCtxs", nil)}, &respData); err != nil {
		return nil, nil, err
	}
	if len(respData) < 2 {
		return nil, nil, fmt.Errorf("unexpected metaAndAssetCtxs response, got %d parts", len(respData))
	}

	var universeData types.Universe
	if err := json.Unmarshal(respData[0], &universeData); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal universe data: %w", err)
	}

	var assetContexts []types.AssetContext
	if err := json.Unmarshal(respData[1], &assetContexts); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal asset contexts: %w", err)
	}

	return universeData.Universe, assetContexts, nil
}

// SubmitOrders 提交一个订单批次
func (c *Client) SubmitOrders(ctx context.Context, payload *types.OrderPayload) (*types.OrderResponse, error) {
	var resp types.OrderResponse
	body := map[string]interface{}{
		"action": map[string]interface{}{
			"type":     "order",
			"orders":   payload.Orders,
			"grouping": payload.Grouping,
		},
	}
	if err := c.RequestJSON(ctx, "/exchange", RequestOptions{Body: body}, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return &resp, fmt.Errorf("venue rejected order batch: %s", resp.Status)
	}
	return &resp, nil
}
