package model

// BaseEstimator は推定器の学習済みフラグを保持する埋め込み用の構造体。
// Predict の前に IsFitted を確認し、未学習なら NotFittedError を返す。
type BaseEstimator struct {
	fitted bool
}

// IsFitted は Fit が正常に完了しているかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.fitted
}

// SetFitted は学習完了を記録する。Fit の成功時のみ呼ぶこと。
func (e *BaseEstimator) SetFitted() {
	e.fitted = true
}

// Reset は学習済みフラグを落とし、再学習前の状態に戻す
func (e *BaseEstimator) Reset() {
	e.fitted = false
}
