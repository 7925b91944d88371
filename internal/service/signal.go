package service

import (
	"context"
	"errors"
	"fmt"

	"sigflow/internal/advisor"
	"sigflow/internal/dao"
	"sigflow/internal/engine"
	"sigflow/internal/execmath"
	"sigflow/internal/model"
	"sigflow/internal/notify"
	"sigflow/internal/parser"
	"sigflow/internal/risk"
	"sigflow/pkg/errors/ecode"
	"sigflow/pkg/hyper/types"
	"sigflow/pkg/logger"

	apperrors "sigflow/pkg/errors"

	"github.com/goccy/go-json"
)

// 信号执行流水线：解析 → 建议 → 风控 → 构造提交 → 落库通知

type SignalService struct {
	parser   *parser.Parser
	advisor  *advisor.Advisor
	risk     *risk.Engine
	engine   *engine.Engine
	dao      *dao.ExecutionDao
	notifier notify.Notifier
}

func NewSignalService(
	p *parser.Parser,
	adv *advisor.Advisor,
	rk *risk.Engine,
	eng *engine.Engine,
	d *dao.ExecutionDao,
	n notify.Notifier) *SignalService {
	return &SignalService{parser: p, advisor: adv, risk: rk, engine: eng, dao: d, notifier: n}
}

// ExecutionOutcome 一次执行流水线的完整产物
type ExecutionOutcome struct {
	Signal   *model.TradeSignal         `json:"signal"`
	Advice   model.AdaptiveSignalAdvice `json:"advice"`
	Risk     model.RiskAssessment       `json:"risk"`
	Payload  *types.OrderPayload        `json:"payload,omitempty"`
	Response *types.OrderResponse       `json:"response,omitempty"`
}

// Execute 跑完整条流水线
// kpi 为空时只出基线建议，不做自适应调整
func (s *SignalService) Execute(ctx context.Context, text string, kpi *model.MarketKPI) (*ExecutionOutcome, error) {
	sig, advice, err := s.adviseSignal(text, kpi)
	if err != nil {
		return nil, err
	}

	outcome := &ExecutionOutcome{Signal: sig, Advice: advice}

	batch, err := s.engine.Prepare(ctx, sig)
	if err != nil {
		return outcome, wrapEngineErr(err)
	}
	outcome.Payload = batch.Payload

	assessment := s.risk.Evaluate(ctx, sig, batch.Payload, nil)
	outcome.Risk = assessment
	if !assessment.Allowed {
		s.record(ctx, sig, batch.Payload, nil, model.ExecStatusRejected)
		s.notifier.Notify(ctx, notify.Event{
			Status:     model.ExecStatusRejected,
			Signal:     sig,
			Risk:       assessment,
			OrderCount: len(batch.Payload.Orders),
		})
		return outcome, apperrors.New(ecode.RiskRejected, riskMessage(assessment))
	}

	resp, err := s.engine.Submit(ctx, sig, batch.Payload)
	if err != nil {
		s.record(ctx, sig, batch.Payload, nil, model.ExecStatusFailed)
		s.notifier.Notify(ctx, notify.Event{
			Status:     model.ExecStatusFailed,
			Signal:     sig,
			Risk:       assessment,
			OrderCount: len(batch.Payload.Orders),
			Detail:     err.Error(),
		})
		return outcome, apperrors.Wrap(err, ecode.TransportErr, "")
	}
	outcome.Response = resp

	s.record(ctx, sig, batch.Payload, resp, model.ExecStatusSubmitted)
	s.notifier.Notify(ctx, notify.Event{
		Status:     model.ExecStatusSubmitted,
		Signal:     sig,
		Risk:       assessment,
		OrderCount: len(batch.Payload.Orders),
	})
	return outcome, nil
}

// Preview 只解析和建议，不过风控也不提交
func (s *SignalService) Preview(ctx context.Context, text string, kpi *model.MarketKPI) (*ExecutionOutcome, error) {
	sig, advice, err := s.adviseSignal(text, kpi)
	if err != nil {
		return nil, err
	}

	outcome := &ExecutionOutcome{Signal: sig, Advice: advice}
	batch, err := s.engine.Prepare(ctx, sig)
	if err != nil {
		return outcome, wrapEngineErr(err)
	}
	outcome.Payload = batch.Payload
	outcome.Risk = s.risk.Evaluate(ctx, sig, batch.Payload, nil)
	return outcome, nil
}

// adviseSignal 解析文字并套用建议，kpi 为空时只出基线建议
func (s *SignalService) adviseSignal(text string, kpi *model.MarketKPI) (*model.TradeSignal, model.AdaptiveSignalAdvice, error) {
	sig, err := s.parser.Parse(text)
	if err != nil {
		return nil, model.AdaptiveSignalAdvice{}, apperrors.Wrap(err, ecode.ParseErr, err.Error())
	}

	var advice model.AdaptiveSignalAdvice
	if kpi != nil {
		advice = s.advisor.AdviseAdaptive(sig, *kpi)
	} else {
		base := s.advisor.Advise(sig)
		advice = model.AdaptiveSignalAdvice{
			SignalAdvice: base,
			Rules:        s.advisor.EvaluateRules(sig, base),
		}
	}
	applyAdvice(sig, advice.SignalAdvice)
	return sig, advice, nil
}

// applyAdvice 用建议补全信号里的缺省项，显式声明的部分不动
func applyAdvice(sig *model.TradeSignal, advice model.SignalAdvice) {
	if sig.Leverage == 0 {
		sig.Leverage = advice.Leverage
	}
	if !sig.ExecutionExplicit {
		sig.Execution = advice.Execution
	}
	if sig.Entry.Kind == "" || sig.Entry.Kind == model.EntrySingle {
		if advice.Entry.Kind != "" && advice.Entry.Kind != model.EntrySingle {
			sig.Entry = advice.Entry
		}
	}
}

// record 落库失败只记日志，不影响主流程的返回
func (s *SignalService) record(ctx context.Context, sig *model.TradeSignal, payload *types.OrderPayload, resp *types.OrderResponse, status string) {
	if s.dao == nil {
		return
	}
	record := &model.ExecutionRecord{
		Symbol:   sig.Symbol,
		Side:     string(sig.Side),
		Status:   status,
		Size:     sig.Size,
		Leverage: sig.Leverage,
		RawText:  sig.RawText,
	}
	record.EntryPrice = sig.EntryPrice
	if payload != nil {
		record.OrderCount = len(payload.Orders)
		record.Grouping = payload.Grouping
	}
	if record.EntryPrice > 0 {
		record.NotionalUsd = sig.Size * record.EntryPrice
		stops := make([]float64, 0, len(sig.StopLosses))
		for _, level := range sig.StopLosses {
			stops = append(stops, level.Price)
		}
		record.MaxLossUsd = execmath.RiskExposure(record.EntryPrice, sig.Side.IsBuy(), stops, sig.Size)
	}
	if resp != nil {
		if raw, err := json.Marshal(resp); err == nil {
			record.Response = string(raw)
		}
	}
	if err := s.dao.Insert(ctx, record); err != nil {
		logger.Errorf("insert execution record failed: %v", err)
	}
}

func riskMessage(assessment model.RiskAssessment) string {
	if len(assessment.Violations) == 0 {
		return ""
	}
	return fmt.Sprintf("risk rejected: %s", assessment.Violations[0].Message)
}

// wrapEngineErr 把引擎的类型化错误映射到业务错误码
func wrapEngineErr(err error) error {
	var unknown *engine.UnknownSymbolError
	if errors.As(err, &unknown) {
		return apperrors.Wrap(err, ecode.UnknownSymbol, unknown.Error())
	}
	var stale *engine.StaleMetadataError
	if errors.As(err, &stale) {
		return apperrors.Wrap(err, ecode.StaleMetadata, stale.Error())
	}
	var alloc *engine.AllocationError
	if errors.As(err, &alloc) {
		return apperrors.Wrap(err, ecode.AllocationErr, alloc.Error())
	}
	return apperrors.Wrap(err, ecode.ConstructErr, "")
}
