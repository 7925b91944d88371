package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// 价格和数量的线上格式：小数字符串，去掉尾零

const priceDecimals = 6

// FormatPrice 价格保留 6 位小数
func FormatPrice(price float64) (string, error) {
	if price <= 0 {
		return "", fmt.Errorf("invalid price %v", price)
	}
	return decimal.NewFromFloat(price).Round(priceDecimals).String(), nil
}

// FormatSize 数量按资产的 szDecimals 保留
func FormatSize(size float64, szDecimals int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("invalid size %v", size)
	}
	d := decimal.NewFromFloat(size).Round(int32(szDecimals))
	if !d.IsPositive() {
		return "", fmt.Errorf("size %v rounds to zero at %d decimals", size, szDecimals)
	}
	return d.String(), nil
}
