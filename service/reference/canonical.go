/*
 * @module service/reference/canonical
 * @description 标量取值规范化，统一JSON数值和CSV字符串的比较形式
 * @architecture 工具函数模式
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 任意标量 -> 规范化字符串
 * @rules 数值统一格式化为最短形式，保证 1 与 "1"、1.0 比较相等
 * @dependencies github.com/spf13/cast, strconv
 * @refs service/reference/profile.go, service/drift/detector.go
 */

package reference

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// CanonicalValue 把任意标量规范化为用于相等比较的字符串形式
// null规范化为空字符串，与缺失字段的默认值保持一致
func CanonicalValue(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(n)
	case float32:
		return formatFloat(float64(n))
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return formatFloat(f)
		}
		return n
	default:
		return cast.ToString(v)
	}
}

// formatFloat 数值的最短字符串形式，1.0 输出为 "1"
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
