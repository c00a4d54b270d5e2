package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeleval/pkg/errors"
)

// CurvePoint は評価曲線上の1点を表す
type CurvePoint struct {
	X         float64
	Y         float64
	Threshold float64
}

// validateBinaryScores は二値ラベルとスコアのベクトルを検証する
func validateBinaryScores(op string, yTrue, yScore *mat.VecDense) (int, error) {
	if yTrue == nil || yScore == nil {
		return 0, errors.NewValueError(op, "nil vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yScore.Len() != n {
		return 0, errors.NewDimensionError(op, n, yScore.Len(), 0)
	}
	for i := 0; i < n; i++ {
		if t := yTrue.AtVec(i); t != 0 && t != 1 {
			return 0, errors.NewValueError(op, "labels must be binary (0 or 1)")
		}
	}
	return n, nil
}

// ROCAUC はROC曲線下面積をMann-Whitney統計で計算する。
// すべてのラベルが同一クラスの場合は定義不能のため0.5を返し、
// UndefinedMetricWarningを発生させる。
func ROCAUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n, err := validateBinaryScores("ROCAUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}

	nPos, nNeg := 0, 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("roc_auc", "only one class present", 0.5))
		return 0.5, nil
	}

	// 正例スコアが負例スコアを上回るペアの割合（同点は0.5）
	var wins float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) != 1 {
			continue
		}
		for j := 0; j < n; j++ {
			if yTrue.AtVec(j) != 0 {
				continue
			}
			switch {
			case yScore.AtVec(i) > yScore.AtVec(j):
				wins += 1
			case yScore.AtVec(i) == yScore.AtVec(j):
				wins += 0.5
			}
		}
	}
	return wins / float64(nPos*nNeg), nil
}

// scoreOrder はスコア降順のインデックスを返す
func scoreOrder(yScore *mat.VecDense) []int {
	n := yScore.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return yScore.AtVec(order[a]) > yScore.AtVec(order[b])
	})
	return order
}

// ROCCurve はROC曲線の点列（X=偽陽性率、Y=真陽性率）を返す
func ROCCurve(yTrue, yScore *mat.VecDense) ([]CurvePoint, error) {
	n, err := validateBinaryScores("ROCCurve", yTrue, yScore)
	if err != nil {
		return nil, err
	}

	nPos, nNeg := 0, 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil, errors.NewValueError("ROCCurve", "both classes must be present")
	}

	order := scoreOrder(yScore)
	points := []CurvePoint{{X: 0, Y: 0, Threshold: yScore.AtVec(order[0]) + 1}}
	tp, fp := 0, 0
	for idx, i := range order {
		if yTrue.AtVec(i) == 1 {
			tp++
		} else {
			fp++
		}
		// 同点スコアのグループ末尾でのみ点を打つ
		if idx+1 < n && yScore.AtVec(order[idx+1]) == yScore.AtVec(i) {
			continue
		}
		points = append(points, CurvePoint{
			X:         float64(fp) / float64(nNeg),
			Y:         float64(tp) / float64(nPos),
			Threshold: yScore.AtVec(i),
		})
	}
	return points, nil
}

// PrecisionRecallCurve は適合率-再現率曲線の点列（X=再現率、Y=適合率）を返す
func PrecisionRecallCurve(yTrue, yScore *mat.VecDense) ([]CurvePoint, error) {
	n, err := validateBinaryScores("PrecisionRecallCurve", yTrue, yScore)
	if err != nil {
		return nil, err
	}

	nPos := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
		}
	}
	if nPos == 0 {
		return nil, errors.NewValueError("PrecisionRecallCurve", "no positive samples")
	}

	order := scoreOrder(yScore)
	var points []CurvePoint
	tp := 0
	for idx, i := range order {
		if yTrue.AtVec(i) == 1 {
			tp++
		}
		if idx+1 < n && yScore.AtVec(order[idx+1]) == yScore.AtVec(i) {
			continue
		}
		points = append(points, CurvePoint{
			X:         float64(tp) / float64(nPos),
			Y:         float64(tp) / float64(idx+1),
			Threshold: yScore.AtVec(i),
		})
	}
	return points, nil
}

// CumulativeGainCurve は累積ゲイン曲線の点列を返す。
// Xは上位からの標本割合、Yは捕捉した正例の割合。
func CumulativeGainCurve(yTrue, yScore *mat.VecDense) ([]CurvePoint, error) {
	n, err := validateBinaryScores("CumulativeGainCurve", yTrue, yScore)
	if err != nil {
		return nil, err
	}

	nPos := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
		}
	}
	if nPos == 0 {
		return nil, errors.NewValueError("CumulativeGainCurve", "no positive samples")
	}

	order := scoreOrder(yScore)
	points := []CurvePoint{{X: 0, Y: 0}}
	tp := 0
	for idx, i := range order {
		if yTrue.AtVec(i) == 1 {
			tp++
		}
		points = append(points, CurvePoint{
			X:         float64(idx+1) / float64(n),
			Y:         float64(tp) / float64(nPos),
			Threshold: yScore.AtVec(i),
		})
	}
	return points, nil
}

// LiftCurve はリフト曲線の点列を返す。
// Xは上位からの標本割合、Yはランダム選択に対する正例率の倍率。
func LiftCurve(yTrue, yScore *mat.VecDense) ([]CurvePoint, error) {
	gain, err := CumulativeGainCurve(yTrue, yScore)
	if err != nil {
		return nil, err
	}
	// 先頭の(0,0)はリフトが定義できないため除く
	points := make([]CurvePoint, 0, len(gain)-1)
	for _, p := range gain[1:] {
		points = append(points, CurvePoint{X: p.X, Y: p.Y / p.X, Threshold: p.Threshold})
	}
	return points, nil
}
