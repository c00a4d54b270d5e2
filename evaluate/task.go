// Package evaluate は評価パイプラインの中核を提供します。
// 学習済みモデルを統一インターフェースでラップし、モデル・指標の
// レジストリを管理し、パーティションごとの指標レポートを構築します。
package evaluate

// TaskKind は評価対象の問題種別を表す
type TaskKind int

const (
	// BinaryClassification は二値分類タスク
	BinaryClassification TaskKind = iota
	// MultiClassification は多クラス分類タスク
	MultiClassification
	// Regression は回帰タスク
	Regression
)

// String はタスク種別の文字列表現を返す
func (t TaskKind) String() string {
	switch t {
	case BinaryClassification:
		return "binary_classification"
	case MultiClassification:
		return "multiclass_classification"
	case Regression:
		return "regression"
	default:
		return "unknown"
	}
}

// IsClassification は分類タスクかどうかを返す
func (t TaskKind) IsClassification() bool {
	return t == BinaryClassification || t == MultiClassification
}

// パーティション名
const (
	// PartitionTest はテストパーティション
	PartitionTest = "test"
	// PartitionTrain は訓練パーティション
	PartitionTrain = "train"
)
