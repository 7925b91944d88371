package model

import "time"

// 执行历史记录，同时是风控当日累计指标的数据来源

const (
	ExecStatusSubmitted = "submitted"
	ExecStatusRejected  = "rejected"
	ExecStatusFailed    = "failed"
)

type ExecutionRecord struct {
	ID        uint      `gorm:"column:id;primary_key;" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`

	Symbol      string  `gorm:"column:symbol" json:"symbol"`
	Side        string  `gorm:"column:side" json:"side"`
	Status      string  `gorm:"column:status" json:"status"` // submitted / rejected / failed
	Size        float64 `gorm:"column:size" json:"size"`
	EntryPrice  float64 `gorm:"column:entry_price" json:"entry_price"`
	NotionalUsd float64 `gorm:"column:notional_usd" json:"notional_usd"`
	MaxLossUsd  float64 `gorm:"column:max_loss_usd" json:"max_loss_usd"`
	Leverage    float64 `gorm:"column:leverage" json:"leverage"`
	OrderCount  int     `gorm:"column:order_count" json:"order_count"`
	Grouping    string  `gorm:"column:grouping" json:"grouping"`
	RawText     string  `gorm:"column:raw_text;type:text" json:"raw_text"`
	Response    string  `gorm:"column:response;type:text" json:"response"` // venue 应答原文
}

func (ExecutionRecord) TableName() string {
	return "execution_record"
}
