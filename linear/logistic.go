package linear

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeleval/core/model"
	"github.com/YuminosukeSato/modeleval/pkg/errors"
	"github.com/YuminosukeSato/modeleval/pkg/log"
)

// LogisticRegression は二値分類のためのロジスティック回帰モデル。
// L2正則化付きの勾配降下法で学習する。
type LogisticRegression struct {
	model.BaseEstimator

	// ハイパーパラメータ
	c            float64 // 正則化強度の逆数 (1/alpha)
	fitIntercept bool
	maxIter      int
	learningRate float64
	tol          float64

	// 学習済みパラメータ
	coef      *mat.VecDense
	intercept float64
	classes   []int
	nFeatures int
	nIter     int
}

// LogisticRegressionOption はLogisticRegressionの設定オプション
type LogisticRegressionOption func(*LogisticRegression)

// WithLRC は正則化強度の逆数を設定する（デフォルト: 1.0）
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.c = c
	}
}

// WithLRFitIntercept は切片を学習するかどうかを設定する（デフォルト: true）
func WithLRFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRMaxIter は最大反復回数を設定する（デフォルト: 1000）
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRLearningRate は学習率を設定する（デフォルト: 0.1）
func WithLRLearningRate(rate float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.learningRate = rate
	}
}

// WithLRTol は収束判定の許容誤差を設定する（デフォルト: 1e-4）
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// NewLogisticRegression は新しいロジスティック回帰モデルを作成する
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		c:            1.0,
		fitIntercept: true,
		maxIter:      1000,
		learningRate: 0.1,
		tol:          1e-4,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// Fit はモデルを訓練データで学習させる。
// 勾配ノルムがtol未満になるまで反復し、maxIter以内に収束しなかった場合は
// ConvergenceWarningをエラーとして返す。
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "LogisticRegression.Fit")
	}
	if ry != r {
		return errors.NewDimensionError("LogisticRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LogisticRegression.Fit", "y must be a column vector")
	}
	if lr.maxIter <= 0 {
		return errors.NewInvalidParameterError("LogisticRegression.Fit", "maxIter", "must be positive", lr.maxIter)
	}
	if lr.learningRate <= 0 {
		return errors.NewInvalidParameterError("LogisticRegression.Fit", "learningRate", "must be positive", lr.learningRate)
	}
	if lr.c <= 0 {
		return errors.NewInvalidParameterError("LogisticRegression.Fit", "C", "must be positive", lr.c)
	}

	// クラスラベルの収集（二値のみ対応）
	labels := map[int]struct{}{}
	for i := 0; i < r; i++ {
		v := y.At(i, 0)
		iv := int(v)
		if float64(iv) != v {
			return errors.NewValueError("LogisticRegression.Fit", "class labels must be integers")
		}
		labels[iv] = struct{}{}
	}
	if len(labels) != 2 {
		return errors.NewValueError("LogisticRegression.Fit", "exactly two classes are required")
	}
	classes := make([]int, 0, 2)
	for l := range labels {
		classes = append(classes, l)
	}
	if classes[0] > classes[1] {
		classes[0], classes[1] = classes[1], classes[0]
	}
	lr.classes = classes

	// 正例=classes[1] として0/1にエンコード
	target := make([]float64, r)
	for i := 0; i < r; i++ {
		if int(y.At(i, 0)) == classes[1] {
			target[i] = 1
		}
	}

	weights := make([]float64, c)
	intercept := 0.0
	alpha := 1.0 / lr.c

	converged := false
	iter := 0
	for ; iter < lr.maxIter; iter++ {
		gradW := make([]float64, c)
		gradB := 0.0

		for i := 0; i < r; i++ {
			z := intercept
			for j := 0; j < c; j++ {
				z += X.At(i, j) * weights[j]
			}
			diff := sigmoid(z) - target[i]
			for j := 0; j < c; j++ {
				gradW[j] += diff * X.At(i, j)
			}
			gradB += diff
		}

		var gradNorm float64
		for j := 0; j < c; j++ {
			gradW[j] = gradW[j]/float64(r) + alpha*weights[j]/float64(r)
			gradNorm += gradW[j] * gradW[j]
		}
		gradB /= float64(r)
		gradNorm += gradB * gradB
		gradNorm = math.Sqrt(gradNorm)

		for j := 0; j < c; j++ {
			weights[j] -= lr.learningRate * gradW[j]
		}
		if lr.fitIntercept {
			intercept -= lr.learningRate * gradB
		}

		if gradNorm < lr.tol {
			converged = true
			break
		}
	}

	lr.nIter = iter
	if !converged {
		return errors.WithStack(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter, ""))
	}

	lr.coef = mat.NewVecDense(c, weights)
	lr.intercept = intercept
	lr.nFeatures = c
	lr.SetFitted()

	slog.Debug("logistic regression fitted",
		log.ModelNameKey, "LogisticRegression",
		log.OperationKey, "fit",
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.IterationsKey, iter,
	)
	return nil
}

// PredictProba は各クラスの所属確率を返す（n_samples × 2、列はクラス昇順）
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}
	r, c := X.Dims()
	if c != lr.nFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", lr.nFeatures, c, 1)
	}

	proba := mat.NewDense(r, 2, nil)
	for i := 0; i < r; i++ {
		z := lr.intercept
		for j := 0; j < c; j++ {
			z += X.At(i, j) * lr.coef.AtVec(j)
		}
		p := sigmoid(z)
		proba.Set(i, 0, 1-p)
		proba.Set(i, 1, p)
	}
	return proba, nil
}

// Predict は入力データに対する予測クラスラベルを返す
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	pred := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		if proba.At(i, 1) >= 0.5 {
			pred.Set(i, 0, float64(lr.classes[1]))
		} else {
			pred.Set(i, 0, float64(lr.classes[0]))
		}
	}
	return pred, nil
}

// Classes は学習時に観測したクラスラベルを昇順で返す
func (lr *LogisticRegression) Classes() []int {
	return lr.classes
}

// NIter は学習に要した反復回数を返す
func (lr *LogisticRegression) NIter() int {
	return lr.nIter
}

// Score は正解率（accuracy）を計算する
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	correct := 0
	for i := 0; i < r; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(r), nil
}
