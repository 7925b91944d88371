package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// 按比例分配数量。全程用整数精度单位（size × 10^szDecimals），
// 最大余数法分配余量，保证各档之和恰好等于总量

// AllocationError 精度太粗，无法按要求的比例切分
type AllocationError struct {
	Reason string
}

func (e *AllocationError) Error() string {
	return "allocation failed: " + e.Reason
}

// Allocate 把 totalSize 切成 len(fractions) 份，返回每份的精度单位数
// fractions 里 0 表示未指定：
//   - 全部未指定 → 均分
//   - 部分未指定 → 指定的按原比例，剩余额度在未指定档间均分
//   - 全部指定但总和不为 1 → 整体归一化
func Allocate(totalSize float64, fractions []float64, szDecimals int) ([]int64, error) {
	n := len(fractions)
	if n == 0 {
		return nil, &AllocationError{Reason: "no levels to allocate"}
	}
	if szDecimals < 0 {
		return nil, &AllocationError{Reason: fmt.Sprintf("invalid size decimals %d", szDecimals)}
	}

	factor := math.Pow10(szDecimals)
	totalUnits := int64(math.Round(totalSize * factor))
	if totalUnits <= 0 {
		return nil, &AllocationError{Reason: fmt.Sprintf("size %v below the minimum unit at %d decimals", totalSize, szDecimals)}
	}

	weights, err := resolveWeights(fractions)
	if err != nil {
		return nil, err
	}

	// 整数底座 + 余数排序
	units := make([]int64, n)
	type remainder struct {
		index int
		frac  float64
	}
	remainders := make([]remainder, 0, n)
	var assigned int64
	for i, w := range weights {
		ideal := float64(totalUnits) * w
		base := int64(math.Floor(ideal))
		units[i] = base
		assigned += base
		remainders = append(remainders, remainder{index: i, frac: ideal - float64(base)})
	}

	// 余量给余数最大的档，余数相同按数组顺序
	sort.SliceStable(remainders, func(a, b int) bool {
		return remainders[a].frac > remainders[b].frac
	})
	leftover := totalUnits - assigned
	for i := int64(0); i < leftover; i++ {
		units[remainders[i%int64(n)].index]++
	}

	for i, u := range units {
		if u <= 0 {
			return nil, &AllocationError{Reason: fmt.Sprintf("level %d rounds to zero size at %d decimals", i+1, szDecimals)}
		}
	}
	return units, nil
}

// resolveWeights 把原始比例转成总和为 1 的权重
func resolveWeights(fractions []float64) ([]float64, error) {
	n := len(fractions)
	weights := make([]float64, n)

	var specified float64
	unspecified := 0
	for _, f := range fractions {
		if f < 0 {
			return nil, &AllocationError{Reason: fmt.Sprintf("negative fraction %v", f)}
		}
		if f == 0 {
			unspecified++
		} else {
			specified += f
		}
	}

	switch {
	case unspecified == n:
		for i := range weights {
			weights[i] = 1 / float64(n)
		}
	case unspecified == 0:
		for i, f := range fractions {
			weights[i] = f / specified
		}
	default:
		leftover := 1 - specified
		if leftover <= 0 {
			// 指定部分已占满，未指定档必然为零
			return nil, &AllocationError{Reason: fmt.Sprintf("specified fractions sum to %v, nothing left for %d unspecified levels", specified, unspecified)}
		}
		share := leftover / float64(unspecified)
		for i, f := range fractions {
			if f == 0 {
				weights[i] = share
			} else {
				weights[i] = f
			}
		}
	}
	return weights, nil
}

// UnitsToSize 精度单位还原成小数字符串，无二进制浮点误差
func UnitsToSize(units int64, szDecimals int) string {
	return decimal.New(units, -int32(szDecimals)).String()
}
