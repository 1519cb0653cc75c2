/*
 * @module service/drift/detector
 * @description 漂移检测器，把对齐后的单条记录与参考画像逐字段比较
 * @architecture 分层架构 - 领域服务层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 对齐记录 -> 逐字段比较 -> 汇总漂移字段 -> 检测结论
 * @rules 数值型用z分数（严格大于3.0），标准差为0时退化为定值比较；类别型用规范化后的集合成员判断；累计所有漂移字段不提前终止
 * @dependencies driftwatch-service/service/reference, github.com/spf13/cast, math
 * @refs service/drift/reconciler.go, api/controllers/ingest_controller.go
 */

package drift

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"driftwatch-service/service/reference"

	"github.com/spf13/cast"
)

// ZScoreThreshold 漂移判定的z分数阈值，比较为严格大于
const ZScoreThreshold = 3.0

// ErrReferenceUnavailable 参考数据不可用，检测被跳过
var ErrReferenceUnavailable = errors.New("reference data not available")

// DriftVerdict 单条记录的漂移检测结论
type DriftVerdict struct {
	DriftDetected   bool     `json:"drift_detected"`
	DriftedFeatures []string `json:"drifted_features"`
}

// Detect 将对齐后的记录与参考画像逐字段比较，返回漂移结论
// 画像为空时立即返回无漂移结论和 ErrReferenceUnavailable，由调用方决定如何上报
func Detect(record ReconciledRecord, profile *reference.Profile) (DriftVerdict, error) {
	verdict := DriftVerdict{DriftedFeatures: []string{}}
	if profile.IsEmpty() {
		return verdict, ErrReferenceUnavailable
	}

	for i := range profile.Fields {
		field := &profile.Fields[i]

		raw, ok := record.Values[field.Name]
		if !ok {
			// 对齐后的记录不应缺字段，防御性跳过
			slog.Warn("对齐记录缺少字段，跳过检测", "field", field.Name)
			continue
		}

		if message, drifted := checkField(field, raw); drifted {
			verdict.DriftedFeatures = append(verdict.DriftedFeatures, message)
		}
	}

	verdict.DriftDetected = len(verdict.DriftedFeatures) > 0
	return verdict, nil
}

// checkField 比较单个字段，返回漂移描述和是否漂移
func checkField(field *reference.FieldSummary, raw interface{}) (string, bool) {
	if field.Kind == reference.KindNumeric {
		return checkNumeric(field, raw)
	}

	canonical := reference.CanonicalValue(raw)
	if !field.IsAllowed(canonical) {
		return fmt.Sprintf("%s (new value: %s)", field.Name, canonical), true
	}
	return "", false
}

// checkNumeric 数值型字段比较
// 无法转换为数值或为NaN的取值显式判定为漂移，避免NaN在IEEE比较下被静默吞掉
func checkNumeric(field *reference.FieldSummary, raw interface{}) (string, bool) {
	value, err := toFloat(raw)
	if err != nil || math.IsNaN(value) {
		return fmt.Sprintf("%s (non-numeric value: %s)", field.Name, reference.CanonicalValue(raw)), true
	}

	var mean, std float64
	if field.Stats != nil {
		mean, std = field.Stats.Mean, field.Stats.Std
	}

	if std == 0 {
		if value != mean {
			return fmt.Sprintf("%s (fixed value: expected %s, received %s)",
				field.Name, formatNumber(mean), formatNumber(value)), true
		}
		return "", false
	}

	z := math.Abs(value-mean) / std
	if z > ZScoreThreshold {
		return fmt.Sprintf("%s (z=%.2f)", field.Name, z), true
	}
	return "", false
}

// toFloat 宽松地把标量转换为float64，null按0处理（与缺失字段默认值一致）
func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	}
	return cast.ToFloat64E(v)
}

// formatNumber 数值的最短字符串形式，用于漂移描述
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
