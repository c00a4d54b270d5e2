package evaluate

import (
	"fmt"
	"strings"
)

// Report はモデル×指標×パーティションの指標値テーブル。
// 永続化はされず、レジストリやデータが変わるたびに再構築される。
type Report struct {
	task        TaskKind
	modelNames  []string // 挿入順
	metricNames []string // 組み込みが先、以後は挿入順
	partitions  []string
	// partition -> model -> metric -> value
	values map[string]map[string]map[string]float64
}

func newReport(task TaskKind, modelNames, metricNames []string) *Report {
	return &Report{
		task:        task,
		modelNames:  modelNames,
		metricNames: metricNames,
		values:      map[string]map[string]map[string]float64{},
	}
}

func (r *Report) set(partition, model, metric string, value float64) {
	byModel, ok := r.values[partition]
	if !ok {
		byModel = map[string]map[string]float64{}
		r.values[partition] = byModel
	}
	byMetric, ok := byModel[model]
	if !ok {
		byMetric = map[string]float64{}
		byModel[model] = byMetric
	}
	byMetric[metric] = value
}

// Task はレポートのタスク種別を返す
func (r *Report) Task() TaskKind {
	return r.task
}

// ModelNames はレポートに含まれるモデル名を挿入順で返す
func (r *Report) ModelNames() []string {
	return r.modelNames
}

// MetricNames はレポートに含まれる指標名を返す
func (r *Report) MetricNames() []string {
	return r.metricNames
}

// Partitions はレポートに含まれるパーティション名を返す
func (r *Report) Partitions() []string {
	return r.partitions
}

// Value は指定したモデル・指標・パーティションの値を返す
func (r *Report) Value(model, metric, partition string) (float64, bool) {
	byModel, ok := r.values[partition]
	if !ok {
		return 0, false
	}
	byMetric, ok := byModel[model]
	if !ok {
		return 0, false
	}
	v, ok := byMetric[metric]
	return v, ok
}

// String はレポートをテキストテーブルとして整形する
func (r *Report) String() string {
	var b strings.Builder

	for _, partition := range r.partitions {
		fmt.Fprintf(&b, "=== %s (%s) ===\n", partition, r.task)

		// ヘッダ行
		nameWidth := len("model")
		for _, m := range r.modelNames {
			if len(m) > nameWidth {
				nameWidth = len(m)
			}
		}
		fmt.Fprintf(&b, "%-*s", nameWidth, "model")
		for _, metric := range r.metricNames {
			fmt.Fprintf(&b, "  %12s", metric)
		}
		b.WriteString("\n")

		for _, model := range r.modelNames {
			fmt.Fprintf(&b, "%-*s", nameWidth, model)
			for _, metric := range r.metricNames {
				if v, ok := r.Value(model, metric, partition); ok {
					fmt.Fprintf(&b, "  %12.6f", v)
				} else {
					fmt.Fprintf(&b, "  %12s", "-")
				}
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
