/*
 * @module service/drift/reconciler
 * @description 记录对齐器，把任意键值记录投影到参考画像的字段顺序上
 * @architecture 分层架构 - 领域服务层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 任意记录 -> 按画像字段投影 -> 缺失字段补默认值 -> 对齐记录
 * @rules 数值型缺失补0，类别型缺失补空字符串，画像外的多余字段静默丢弃
 * @dependencies driftwatch-service/service/reference, log/slog
 * @refs service/drift/detector.go
 */

package drift

import (
	"log/slog"

	"driftwatch-service/service/reference"
)

// ReconciledRecord 对齐到参考模式后的记录，字段顺序与画像一致
type ReconciledRecord struct {
	Columns []string               `json:"columns"`
	Values  map[string]interface{} `json:"values"`
}

// Reconcile 将任意键值记录对齐到参考画像
// 总是成功：空画像产生空的对齐记录，缺失字段按类型补默认值并记录警告
func Reconcile(record map[string]interface{}, profile *reference.Profile) ReconciledRecord {
	reconciled := ReconciledRecord{
		Columns: []string{},
		Values:  map[string]interface{}{},
	}
	if profile == nil {
		return reconciled
	}

	for i := range profile.Fields {
		field := &profile.Fields[i]
		reconciled.Columns = append(reconciled.Columns, field.Name)

		if value, ok := record[field.Name]; ok {
			reconciled.Values[field.Name] = value
			continue
		}

		slog.Warn("记录缺失字段，使用默认值", "field", field.Name, "kind", field.Kind)
		if field.Kind == reference.KindNumeric {
			reconciled.Values[field.Name] = float64(0)
		} else {
			reconciled.Values[field.Name] = ""
		}
	}

	return reconciled
}
