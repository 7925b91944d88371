package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"sigflow/conf"
	"sigflow/pkg/hyper/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() conf.TransportConfig {
	return conf.TransportConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
		Timeout:      time.Second,
	}
}

func TestRequestRetriesUntilExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, fastConfig())
	require.NoError(t, err)

	_, err = client.Request(context.Background(), "/info", RequestOptions{})
	require.Error(t, err)

	// 每次都 502：恰好请求 MaxAttempts 次后放弃
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 3, te.Attempts)
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Equal(t, "/info", te.Path)
}

func TestRequestRecoversFromTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, fastConfig())
	require.NoError(t, err)

	data, err := client.Request(context.Background(), "/info", RequestOptions{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRequestDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, fastConfig())
	require.NoError(t, err)

	_, err = client.Request(context.Background(), "/info", RequestOptions{})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRequestRetriesRateLimited(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, fastConfig())
	require.NoError(t, err)

	_, err = client.Request(context.Background(), "/info", RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRequestRateLimiterSpacesDispatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := fastConfig()
	cfg.RateLimitPerSecond = 50 // 至少间隔 20ms
	client, err := NewClient(srv.URL, cfg)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.Request(context.Background(), "/info", RequestOptions{})
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestNewClientRejectsInvalidURL(t *testing.T) {
	_, err := NewClient("not-a-url", fastConfig())
	require.Error(t, err)

	_, err = NewClient("", fastConfig())
	require.Error(t, err)
}

func TestSubmitOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchange", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"status":"ok","response":{"type":"order","data":{"statuses":[{"resting":{"oid":77}}]}}}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, fastConfig())
	require.NoError(t, err)

	payload := &types.OrderPayload{
		Orders: []types.OrderWire{{
			AssetId: 0, IsBuy: true, Price: "60000", Size: "1",
			OrderType: types.OrderTypeWire{Limit: &types.LimitOrderType{Tif: types.TifGtc}},
		}},
		Grouping: types.GroupingPositionTpsl,
	}
	resp, err := client.SubmitOrders(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Response)
	assert.Equal(t, int64(77), resp.Response.Data.Statuses[0].Resting.Oid)
}

func TestSubmitOrdersRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"err"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, fastConfig())
	require.NoError(t, err)

	_, err = client.SubmitOrders(context.Background(), &types.OrderPayload{Grouping: types.GroupingNone})
	require.Error(t, err)
}

func TestPerpetualAssetContexts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/info", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"universe":[{"name":"BTC","szDecimals":3,"maxLeverage":50},{"name":"ETH","szDecimals":2,"maxLeverage":50}]},
			[{"midPx":"60000","markPx":"60001"},{"midPx":"3200","markPx":"3199"}]
		]`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, fastConfig())
	require.NoError(t, err)

	universe, contexts, err := client.PerpetualAssetContexts(context.Background())
	require.NoError(t, err)
	require.Len(t, universe, 2)
	require.Len(t, contexts, 2)
	assert.Equal(t, "BTC", universe[0].Name)
	assert.Equal(t, 3, universe[0].SzDecimals)
	assert.Equal(t, "60000", contexts[0].MidPx)
}
