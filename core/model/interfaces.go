// Package model は予測モデルが満たすべきインターフェースを定義します。
// 評価パイプラインはここで定義された能力のみに依存し、
// 具体的な学習アルゴリズムには依存しません。
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// ProbabilityPredictor はクラス確率を出力できる分類器のインターフェース
type ProbabilityPredictor interface {
	// PredictProba は各クラスの所属確率を返す（n_samples × n_classes）
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// ClassProvider は学習時に観測したクラスラベルを公開するモデルのインターフェース
type ClassProvider interface {
	// Classes は学習時に観測したユニークなクラスラベルを返す
	Classes() []int
}

// Scorer はスコアを計算できるモデルのインターフェース
type Scorer interface {
	// Score は予測の決定係数（R²）または正解率を返す
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor は回帰モデルのインターフェース
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// Classifier は分類モデルのインターフェース
type Classifier interface {
	Fitter
	Predictor
	ProbabilityPredictor
	ClassProvider
}
