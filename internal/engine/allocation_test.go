package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(units []int64) int64 {
	var total int64
	for _, u := range units {
		total += u
	}
	return total
}

func TestAllocateEqualSplit(t *testing.T) {
	units, err := Allocate(3, make([]float64, 3), 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1000, 1000, 1000}, units)
}

func TestAllocateExactSumNoDrift(t *testing.T) {
	// 任意组合下各档之和都必须精确等于总量
	cases := []struct {
		name      string
		size      float64
		fractions []float64
		decimals  int
	}{
		{"均分不能整除", 1, make([]float64, 3), 4},
		{"全部指定", 0.7, []float64{0.5, 0.3, 0.2}, 3},
		{"指定总和小于1", 2, []float64{0.2, 0.2}, 2},
		{"指定总和大于1", 1.5, []float64{0.8, 0.7}, 3},
		{"部分未指定", 1, []float64{0.5, 0, 0}, 3},
		{"零点几的小数量", 0.123, []float64{0.33, 0.33, 0.34}, 3},
		{"三档七单位", 0.0007, make([]float64, 3), 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			units, err := Allocate(c.size, c.fractions, c.decimals)
			require.NoError(t, err)

			factor := int64(1)
			for i := 0; i < c.decimals; i++ {
				factor *= 10
			}
			want := int64(float64(factor)*c.size + 0.5)
			assert.Equal(t, want, sum(units), "各档之和必须等于总精度单位")
			for i, u := range units {
				assert.Positive(t, u, "level %d", i)
			}
		})
	}
}

func TestAllocateLargestRemainder(t *testing.T) {
	// 10 个单位按 1/3 均分：余数相同，按数组顺序补给前面的档
	units, err := Allocate(0.010, make([]float64, 3), 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 3}, units)
}

func TestAllocatePartialFractions(t *testing.T) {
	// 指定 50%，剩下两档均分余量
	units, err := Allocate(1, []float64{0.5, 0, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{50, 25, 25}, units)
}

func TestAllocateRescalesOverSpecified(t *testing.T) {
	// 全部指定但总和 1.5：归一化后按 2:1 分
	units, err := Allocate(0.3, []float64{1.0, 0.5}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{200, 100}, units)
}

func TestAllocateErrors(t *testing.T) {
	var allocErr *AllocationError

	// 数量低于最小单位
	_, err := Allocate(0.0001, []float64{0}, 3)
	require.ErrorAs(t, err, &allocErr)

	// 档数多于可分的单位，必有一档为零
	_, err = Allocate(0.002, make([]float64, 3), 3)
	require.ErrorAs(t, err, &allocErr)

	// 没有档位
	_, err = Allocate(1, nil, 3)
	require.ErrorAs(t, err, &allocErr)

	// 指定部分已占满，未指定档分不到数量
	_, err = Allocate(1, []float64{0.7, 0.5, 0}, 3)
	require.ErrorAs(t, err, &allocErr)

	// 负数比例
	_, err = Allocate(1, []float64{-0.2, 0.5}, 3)
	require.ErrorAs(t, err, &allocErr)
}

func TestUnitsToSize(t *testing.T) {
	assert.Equal(t, "1", UnitsToSize(1000, 3))
	assert.Equal(t, "0.004", UnitsToSize(4, 3))
	assert.Equal(t, "1.5", UnitsToSize(15, 1))
	assert.Equal(t, "59500", UnitsToSize(59500, 0))
}
