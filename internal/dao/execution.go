package dao

import (
	"context"
	"time"

	"sigflow/internal/model"

	"gorm.io/gorm"
)

type ExecutionDao struct {
	db *gorm.DB
}

func NewExecutionDao(db *gorm.DB) *ExecutionDao {
	return &ExecutionDao{db: db}
}

// 插入执行记录
func (d *ExecutionDao) Insert(ctx context.Context, record *model.ExecutionRecord) error {
	return d.db.WithContext(ctx).Create(record).Error
}

// 查询当日已提交的执行记录聚合，作为风控的当日累计指标
func (d *ExecutionDao) DailyMetrics(ctx context.Context, day time.Time) (model.DailyMetrics, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	var agg struct {
		Trades      int64
		LossUsd     float64
		NotionalUsd float64
	}
	err := d.db.WithContext(ctx).Model(&model.ExecutionRecord{}).
		Select("COUNT(*) AS trades, COALESCE(SUM(max_loss_usd), 0) AS loss_usd, COALESCE(SUM(notional_usd), 0) AS notional_usd").
		Where("created_at >= ?", dayStart).
		Where("status = ?", model.ExecStatusSubmitted).
		Scan(&agg).Error
	if err != nil {
		return model.DailyMetrics{}, err
	}
	return model.DailyMetrics{
		Trades:      agg.Trades,
		LossUsd:     agg.LossUsd,
		NotionalUsd: agg.NotionalUsd,
	}, nil
}

// 最近的执行记录，时间倒序
func (d *ExecutionDao) ListRecent(ctx context.Context, limit int) ([]model.ExecutionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []model.ExecutionRecord
	err := d.db.WithContext(ctx).Model(&model.ExecutionRecord{}).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
