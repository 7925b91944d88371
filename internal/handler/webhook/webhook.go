package webhook

import (
	"sigflow/internal/model"
	"sigflow/internal/service"
	"sigflow/pkg/errors"
	"sigflow/pkg/errors/ecode"
	"sigflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.SignalService
}

func NewHandler(svc *service.SignalService) *Handler {
	return &Handler{svc: svc}
}

// 信号请求体。kpi 可选，带上则走自适应建议
type signalRequest struct {
	Text string      `json:"text" binding:"required,min=3"`
	KPI  *kpiRequest `json:"kpi,omitempty"`
}

type kpiRequest struct {
	VolatilityScore float64 `json:"volatility_score" binding:"gte=0"`
	TrendStrength   float64 `json:"trend_strength" binding:"gte=0,lte=1"`
	DrawdownPct     float64 `json:"drawdown_pct" binding:"gte=0,lte=100"`
	WinRate         float64 `json:"win_rate" binding:"gte=0,lte=1"`
	LiquidityScore  float64 `json:"liquidity_score" binding:"gte=0"`
	SlippageBps     float64 `json:"slippage_bps" binding:"gte=0"`
}

func (r *kpiRequest) toModel() *model.MarketKPI {
	if r == nil {
		return nil
	}
	return &model.MarketKPI{
		VolatilityScore: r.VolatilityScore,
		TrendStrength:   r.TrendStrength,
		DrawdownPct:     r.DrawdownPct,
		WinRate:         r.WinRate,
		LiquidityScore:  r.LiquidityScore,
		SlippageBps:     r.SlippageBps,
	}
}

// HandleSignal 接收文字信号，跑完整执行流水线
func (h *Handler) HandleSignal() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req signalRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.Wrap(err, ecode.InvalidParams, ""), nil)
			return
		}

		outcome, err := h.svc.Execute(ctx.Request.Context(), req.Text, req.KPI.toModel())
		response.JSON(ctx, err, outcome)
	}
}

// PreviewSignal 只解析和建议，不过风控也不下单
func (h *Handler) PreviewSignal() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req signalRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.Wrap(err, ecode.InvalidParams, ""), nil)
			return
		}

		preview, err := h.svc.Preview(ctx.Request.Context(), req.Text, req.KPI.toModel())
		response.JSON(ctx, err, preview)
	}
}
