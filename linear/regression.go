// Package linear は参照実装としての線形モデルを提供します。
// 評価パイプラインの「外部学習ルーチン」に相当し、core/model の
// インターフェースを満たす任意のモデルと差し替え可能です。
package linear

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeleval/core/model"
	"github.com/YuminosukeSato/modeleval/core/parallel"
	"github.com/YuminosukeSato/modeleval/metrics"
	"github.com/YuminosukeSato/modeleval/pkg/errors"
	"github.com/YuminosukeSato/modeleval/pkg/log"
)

// LinearRegression は線形回帰モデル
type LinearRegression struct {
	model.BaseEstimator
	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片
	NFeatures int           // 特徴量の数

	fitIntercept bool
}

// LinearRegressionOption はLinearRegressionの設定オプション
type LinearRegressionOption func(*LinearRegression)

// WithFitIntercept は切片を学習するかどうかを設定する（デフォルト: true）
func WithFitIntercept(fit bool) LinearRegressionOption {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...LinearRegressionOption) *LinearRegression {
	lr := &LinearRegression{fitIntercept: true}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// Fit はモデルを訓練データで学習させる
// 正規方程式 w = (X^T * X)^(-1) * X^T * y を使用
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	// 入力の検証
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "LinearRegression.Fit")
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	lr.NFeatures = c

	// 切片項のために X に 1 の列を追加
	// X_with_intercept = [1, X]
	cols := c
	offset := 0
	if lr.fitIntercept {
		cols = c + 1
		offset = 1
	}
	design := mat.NewDense(r, cols, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if lr.fitIntercept {
				design.Set(i, 0, 1.0)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
	})

	// 正規方程式を解く: (X^T X) w = X^T y
	var xtx mat.Dense
	xtx.Mul(design.T(), design)

	var xty mat.Dense
	xty.Mul(design.T(), y)

	var solution mat.Dense
	if err := solution.Solve(&xtx, &xty); err != nil {
		return errors.Wrap(errors.ErrSingularMatrix, "LinearRegression.Fit")
	}

	weights := mat.NewVecDense(c, nil)
	if lr.fitIntercept {
		lr.Intercept = solution.At(0, 0)
	}
	for j := 0; j < c; j++ {
		weights.SetVec(j, solution.At(j+offset, 0))
	}
	lr.Weights = weights
	lr.SetFitted()

	slog.Debug("linear regression fitted",
		log.ModelNameKey, "LinearRegression",
		log.OperationKey, "fit",
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return nil
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	pred := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			v := lr.Intercept
			for j := 0; j < c; j++ {
				v += X.At(i, j) * lr.Weights.AtVec(j)
			}
			pred.Set(i, 0, v)
		}
	})
	return pred, nil
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}
