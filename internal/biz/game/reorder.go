package game

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/yola1107/yut/internal/model"
	"github.com/yola1107/yut/pkg/codes"
)

// ParseReorder 校验调整后的顺序. 输入为逗号分隔的整数, 必须是原结果的一个排列:
// 个数相同, 每个值合法且非零, 多重集合相同.
// 空字段(如 "4,,5")和带正号的数字视为非数字.
func ParseReorder(original []int32, input string) ([]int32, error) {
	var values []int32
	if strings.TrimSpace(input) != "" {
		for _, f := range strings.Split(input, ",") {
			f = strings.TrimSpace(f)
			if f == "" || strings.HasPrefix(f, "+") {
				return nil, codes.ErrReorderNotNumber.WithCause(fmt.Errorf("%q", f))
			}
			v, err := strconv.ParseInt(f, 10, 32)
			if err != nil {
				return nil, codes.ErrReorderNotNumber.WithCause(fmt.Errorf("%q", f))
			}
			values = append(values, int32(v))
		}
	}

	if len(values) != len(original) {
		return nil, codes.ErrReorderCount.WithCause(fmt.Errorf("want %d values, got %d", len(original), len(values)))
	}
	if bad, ok := lo.Find(values, func(v int32) bool { return !model.ValidThrow(v) }); ok {
		return nil, codes.ErrReorderValue.WithCause(fmt.Errorf("%d", bad))
	}

	a, b := slices.Clone(original), slices.Clone(values)
	slices.Sort(a)
	slices.Sort(b)
	if !slices.Equal(a, b) {
		return nil, codes.ErrReorderMismatch.WithCause(fmt.Errorf("%v is not a permutation of %v", values, original))
	}
	return values, nil
}
