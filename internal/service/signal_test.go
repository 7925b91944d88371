package service

import (
	"context"
	"testing"
	"time"

	"sigflow/conf"
	"sigflow/internal/advisor"
	"sigflow/internal/engine"
	"sigflow/internal/notify"
	"sigflow/internal/parser"
	"sigflow/internal/risk"
	apperrors "sigflow/pkg/errors"
	"sigflow/pkg/errors/ecode"
	"sigflow/pkg/hyper/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 假交易所：固定元数据，记录提交过的批次
type fakeVenue struct {
	submitted []*types.OrderPayload
}

func (f *fakeVenue) PerpetualAssetContexts(_ context.Context) ([]types.UniverseItem, []types.AssetContext, error) {
	universe := []types.UniverseItem{{Name: "BTC", SzDecimals: 3, MaxLeverage: 50}}
	contexts := []types.AssetContext{{MidPx: "60000", MarkPx: "60001"}}
	return universe, contexts, nil
}

func (f *fakeVenue) SubmitOrders(_ context.Context, payload *types.OrderPayload) (*types.OrderResponse, error) {
	f.submitted = append(f.submitted, payload)
	return &types.OrderResponse{Status: "ok"}, nil
}

func newTestService(venue *fakeVenue, riskCfg conf.RiskConfig) *SignalService {
	cache := engine.NewMetadataCache(venue, time.Minute)
	eng := engine.New(venue, cache, conf.EngineConfig{SlippageBps: 20, RefreshBlocking: true})
	return NewSignalService(
		parser.New(),
		advisor.New(conf.AdvisorConfig{DefaultLeverage: 5}),
		risk.NewEngine(riskCfg, nil),
		eng,
		nil,
		notify.NewLogNotifier(),
	)
}

func TestExecutePipeline(t *testing.T) {
	venue := &fakeVenue{}
	svc := newTestService(venue, conf.RiskConfig{AccountEquityUsd: 100000})

	outcome, err := svc.Execute(context.Background(),
		"Long BTC 0.75 entry 63000 stop 61500 take profit 64000 tp2 65000", nil)
	require.NoError(t, err)

	require.NotNil(t, outcome.Payload)
	assert.True(t, outcome.Risk.Allowed)
	require.Len(t, venue.submitted, 1)
	// 1 入场 + 2 止盈 + 1 止损
	assert.Len(t, venue.submitted[0].Orders, 4)
	assert.Equal(t, types.GroupingPositionTpsl, venue.submitted[0].Grouping)
	// 缺省杠杆由建议补全
	assert.Equal(t, 5.0, outcome.Signal.Leverage)
}

func TestExecuteRiskRejected(t *testing.T) {
	venue := &fakeVenue{}
	svc := newTestService(venue, conf.RiskConfig{
		AccountEquityUsd:       100000,
		MaxPositionNotionalUsd: 1000,
	})

	outcome, err := svc.Execute(context.Background(),
		"Long BTC 0.75 entry 63000 stop 61500 tp 64000", nil)
	require.Error(t, err)

	code, _ := apperrors.DecodeErr(err)
	assert.Equal(t, ecode.RiskRejected, code)
	assert.False(t, outcome.Risk.Allowed)
	// 被风控拦截时不会提交
	assert.Empty(t, venue.submitted)
}

func TestExecuteParseFailure(t *testing.T) {
	venue := &fakeVenue{}
	svc := newTestService(venue, conf.RiskConfig{})

	_, err := svc.Execute(context.Background(), "buy low sell high", nil)
	require.Error(t, err)
	code, _ := apperrors.DecodeErr(err)
	assert.Equal(t, ecode.ParseErr, code)
	assert.Empty(t, venue.submitted)
}

func TestExecuteUnknownSymbol(t *testing.T) {
	venue := &fakeVenue{}
	svc := newTestService(venue, conf.RiskConfig{})

	_, err := svc.Execute(context.Background(), "long DOGE 100 entry 0.2 stop 0.18 tp 0.25", nil)
	require.Error(t, err)
	code, _ := apperrors.DecodeErr(err)
	assert.Equal(t, ecode.UnknownSymbol, code)
}

func TestPreviewDoesNotSubmit(t *testing.T) {
	venue := &fakeVenue{}
	svc := newTestService(venue, conf.RiskConfig{AccountEquityUsd: 100000})

	outcome, err := svc.Preview(context.Background(),
		"Long BTC 0.75 entry 63000 stop 61500 tp 64000", nil)
	require.NoError(t, err)
	require.NotNil(t, outcome.Payload)
	assert.Empty(t, venue.submitted)
}
