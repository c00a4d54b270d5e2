package evaluate

import (
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeleval/core/model"
	"github.com/YuminosukeSato/modeleval/dataset"
	"github.com/YuminosukeSato/modeleval/pkg/errors"
	"github.com/YuminosukeSato/modeleval/pkg/log"
)

// Model は学習済みモデルを統一インターフェースでラップしたもの。
// レポート生成器はこの型のみに依存し、元のモデルは参照として保持される
// （コピーはされない）。
type Model struct {
	name      string
	predictor model.Predictor
	proba     model.ProbabilityPredictor // 回帰モデルの場合はnil
	classes   []int                      // 分類器のクラスラベル（昇順）
}

// deriveName はモデルの型名から識別子を導出する
func deriveName(est model.Predictor) string {
	name := fmt.Sprintf("%T", est)
	// "*linear.LogisticRegression" -> "LogisticRegression"
	name = strings.TrimPrefix(name, "*")
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// Wrap は学習済みモデルを統一予測インターフェースでラップする。
// nameが空の場合はモデルの型名から導出する。
//
// estがPredictProbaを実装する場合は分類器として扱われ、クラスラベルが
// 必要になる。classLabelsがnilの場合はモデル自身のClasses()から推定し、
// どちらからも得られなければInvalidParameterErrorを返す。
func Wrap(est model.Predictor, name string, classLabels []int) (*Model, error) {
	if est == nil {
		return nil, errors.NewValueError("evaluate.Wrap", "model must not be nil")
	}
	if name == "" {
		name = deriveName(est)
	}

	m := &Model{name: name, predictor: est}

	if proba, ok := est.(model.ProbabilityPredictor); ok {
		m.proba = proba

		labels := classLabels
		if labels == nil {
			if provider, ok := est.(model.ClassProvider); ok {
				labels = provider.Classes()
			}
		}
		if len(labels) < 2 {
			return nil, errors.NewInvalidParameterError("evaluate.Wrap", "classLabels",
				"class labels are required for classifiers and could not be inferred", classLabels)
		}
		m.classes = append([]int(nil), labels...)
	}

	return m, nil
}

// Fit は外部の学習ルーチンに学習を委譲し、結果をラップして返す。
// 学習に失敗した場合はTrainingErrorとして伝播する。
func Fit(est interface {
	model.Fitter
	model.Predictor
}, train *dataset.Dataset) (*Model, error) {
	if est == nil {
		return nil, errors.NewValueError("evaluate.Fit", "model must not be nil")
	}
	if train == nil {
		return nil, errors.NewValueError("evaluate.Fit", "training dataset must not be nil")
	}

	name := deriveName(est)
	if err := est.Fit(train.X(), train.YMatrix()); err != nil {
		return nil, errors.NewTrainingError(name, err)
	}

	slog.Debug("model fitted",
		log.ModelNameKey, name,
		log.OperationKey, "fit",
		log.SamplesKey, train.NumRows(),
	)
	return Wrap(est, name, nil)
}

// Name はモデルの識別子を返す
func (m *Model) Name() string {
	return m.name
}

// IsClassifier は分類器かどうかを返す
func (m *Model) IsClassifier() bool {
	return m.proba != nil
}

// Classes は分類器のクラスラベルを返す（回帰モデルの場合はnil）
func (m *Model) Classes() []int {
	return m.classes
}

// Predict は予測ラベルまたは予測値をベクトルとして返す
func (m *Model) Predict(X mat.Matrix) (*mat.VecDense, error) {
	pred, err := m.predictor.Predict(X)
	if err != nil {
		return nil, err
	}
	r, c := pred.Dims()
	if c != 1 {
		return nil, errors.NewValueError("Model.Predict", "predictor must return a column vector")
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, pred.At(i, 0))
	}
	return v, nil
}

// PredictProba は各クラスの所属確率行列を返す（分類器のみ）
func (m *Model) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if m.proba == nil {
		return nil, errors.NewUnsupportedOperationError("PredictProba", "regression")
	}
	return m.proba.PredictProba(X)
}

// PositiveScores は正例クラス（classes中の最大ラベル）の予測確率を返す。
// 二値分類専用。
func (m *Model) PositiveScores(X mat.Matrix) (*mat.VecDense, error) {
	if m.proba == nil {
		return nil, errors.NewUnsupportedOperationError("PositiveScores", "regression")
	}
	if len(m.classes) != 2 {
		return nil, errors.NewUnsupportedOperationError("PositiveScores", "multiclass_classification")
	}

	proba, err := m.proba.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, c := proba.Dims()
	if c != 2 {
		return nil, errors.NewDimensionError("Model.PositiveScores", 2, c, 1)
	}
	scores := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		scores.SetVec(i, proba.At(i, 1))
	}
	return scores, nil
}
