/*
 * @module service/reference/profile
 * @description 参考数据画像，按字段保存类型分类与分布摘要，启动时构建一次后只读
 * @architecture 分层架构 - 领域模型层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 参考数据集 -> 列类型分类 -> 分布统计 -> 只读画像
 * @rules 画像构建后不再修改，可被多个请求并发读取
 * @dependencies math, strconv
 * @refs service/reference/loader.go, service/drift/detector.go
 */

package reference

import (
	"math"
	"strconv"
	"strings"
)

// FieldKind 字段类型分类
type FieldKind string

const (
	// KindNumeric 数值型字段，使用均值/标准差摘要
	KindNumeric FieldKind = "numeric"
	// KindCategorical 类别型字段，使用观测值集合摘要
	KindCategorical FieldKind = "categorical"
)

// NumericStats 数值型字段的分布统计，标准差使用样本公式（ddof=1）
type NumericStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// FieldSummary 单个字段的参考摘要
type FieldSummary struct {
	Name          string        `json:"name"`
	Kind          FieldKind     `json:"kind"`
	Stats         *NumericStats `json:"numeric_stats,omitempty"`
	AllowedValues []string      `json:"allowed_values,omitempty"` // 规范化后的观测值，按首次出现顺序

	allowedSet map[string]struct{}
}

// IsAllowed 判断规范化后的取值是否出现在参考值集合中
func (f *FieldSummary) IsAllowed(canonical string) bool {
	_, ok := f.allowedSet[canonical]
	return ok
}

// Profile 参考数据画像，字段顺序与参考数据集列顺序一致
type Profile struct {
	Fields []FieldSummary `json:"fields"`
}

// IsEmpty 判断画像是否为空（加载失败时回退为空画像）
func (p *Profile) IsEmpty() bool {
	return p == nil || len(p.Fields) == 0
}

// Empty 返回空画像
func Empty() *Profile {
	return &Profile{}
}

// BuildProfile 从表头和数据行构建参考画像
// 列中所有非空单元格均可解析为数值时分类为数值型，否则为类别型
func BuildProfile(header []string, rows [][]string) *Profile {
	profile := &Profile{Fields: make([]FieldSummary, 0, len(header))}

	for idx, name := range header {
		column := columnValues(rows, idx)

		if isNumericColumn(column) {
			mean, std := sampleStats(parseNumericColumn(column))
			profile.Fields = append(profile.Fields, FieldSummary{
				Name:  name,
				Kind:  KindNumeric,
				Stats: &NumericStats{Mean: mean, Std: std},
			})
			continue
		}

		values, set := uniqueValues(column)
		profile.Fields = append(profile.Fields, FieldSummary{
			Name:          name,
			Kind:          KindCategorical,
			AllowedValues: values,
			allowedSet:    set,
		})
	}

	return profile
}

// columnValues 提取指定列的全部单元格，行长度不足时按空值处理
func columnValues(rows [][]string, idx int) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if idx < len(row) {
			values = append(values, row[idx])
		} else {
			values = append(values, "")
		}
	}
	return values
}

// isNumericColumn 判断列是否为数值型：至少包含一个非空单元格，且非空单元格全部可解析为浮点数
func isNumericColumn(values []string) bool {
	hasValue := false
	for _, v := range values {
		s := strings.TrimSpace(v)
		if s == "" {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return false
		}
		hasValue = true
	}
	return hasValue
}

// parseNumericColumn 解析数值列的非空单元格，空单元格按缺失值跳过
func parseNumericColumn(values []string) []float64 {
	parsed := make([]float64, 0, len(values))
	for _, v := range values {
		s := strings.TrimSpace(v)
		if s == "" {
			continue
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			parsed = append(parsed, f)
		}
	}
	return parsed
}

// sampleStats 计算均值和样本标准差（ddof=1），观测数不足两个时标准差为0
func sampleStats(values []float64) (float64, float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	if n < 2 {
		return mean, 0
	}

	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return mean, math.Sqrt(sumSq / float64(n-1))
}

// uniqueValues 收集类别列去重后的规范化取值，保持首次出现顺序
func uniqueValues(values []string) ([]string, map[string]struct{}) {
	ordered := make([]string, 0)
	set := make(map[string]struct{})
	for _, v := range values {
		canonical := CanonicalValue(v)
		if _, ok := set[canonical]; ok {
			continue
		}
		set[canonical] = struct{}{}
		ordered = append(ordered, canonical)
	}
	return ordered, set
}
