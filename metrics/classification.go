package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeleval/pkg/errors"
)

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// binaryCounts は二値ラベルに対する混同行列のセルを数える。
// 正例ラベルは1、負例ラベルは0でなければならない。
func binaryCounts(op string, yTrue, yPred *mat.VecDense) (tn, fp, fn, tp int, err error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, 0, 0, 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, 0, 0, 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}

	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		p := yPred.AtVec(i)
		if (t != 0 && t != 1) || (p != 0 && p != 1) {
			return 0, 0, 0, 0, errors.NewValueError(op, "labels must be binary (0 or 1)")
		}
		switch {
		case t == 1 && p == 1:
			tp++
		case t == 0 && p == 0:
			tn++
		case t == 0 && p == 1:
			fp++
		default:
			fn++
		}
	}
	return tn, fp, fn, tp, nil
}

// Precision は適合率 TP/(TP+FP) を計算する。
// 陽性と予測されたサンプルが1つもない場合は0を返し、
// UndefinedMetricWarningを発生させる。
func Precision(yTrue, yPred *mat.VecDense) (float64, error) {
	_, fp, _, tp, err := binaryCounts("Precision", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if tp+fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted positives", 0.0))
		return 0, nil
	}
	return float64(tp) / float64(tp+fp), nil
}

// Recall は再現率 TP/(TP+FN) を計算する。
// 正例が1つもない場合は0を返し、UndefinedMetricWarningを発生させる。
func Recall(yTrue, yPred *mat.VecDense) (float64, error) {
	_, _, fn, tp, err := binaryCounts("Recall", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if tp+fn == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no true positives in data", 0.0))
		return 0, nil
	}
	return float64(tp) / float64(tp+fn), nil
}

// F1Score は適合率と再現率の調和平均を計算する
func F1Score(yTrue, yPred *mat.VecDense) (float64, error) {
	precision, err := Precision(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	recall, err := Recall(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if precision+recall == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("f1_score", "precision and recall are both zero", 0.0))
		return 0, nil
	}
	return 2 * precision * recall / (precision + recall), nil
}

// LogLoss は対数損失（クロスエントロピー）を計算する。
// yScore は正例クラスの予測確率で、数値安定性のため確率は
// [eps, 1-eps] にクリップされる。
func LogLoss(yTrue, yScore *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("LogLoss", "empty vector")
	}
	if yScore.Len() != n {
		return 0, errors.NewDimensionError("LogLoss", n, yScore.Len(), 0)
	}

	const eps = 1e-15
	var sum float64
	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		if t != 0 && t != 1 {
			return 0, errors.NewValueError("LogLoss", "labels must be binary (0 or 1)")
		}
		p := yScore.AtVec(i)
		p = math.Max(eps, math.Min(1-eps, p))
		if t == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(n), nil
}

// ConfusionMatrix はクラスラベルごとの混同行列を計算する。
// 返り値の行列は行が真のクラス、列が予測クラスに対応し、
// classes の順序に従う。
func ConfusionMatrix(yTrue, yPred *mat.VecDense, classes []int) (*mat.Dense, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("ConfusionMatrix", n, yPred.Len(), 0)
	}
	if len(classes) < 2 {
		return nil, errors.NewValueError("ConfusionMatrix", "need at least two classes")
	}

	index := make(map[int]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	k := len(classes)
	cm := mat.NewDense(k, k, nil)
	for i := 0; i < n; i++ {
		t, tok := index[int(yTrue.AtVec(i))]
		p, pok := index[int(yPred.AtVec(i))]
		if !tok || !pok {
			return nil, errors.NewValueError("ConfusionMatrix", "label outside the supplied class set")
		}
		cm.Set(t, p, cm.At(t, p)+1)
	}
	return cm, nil
}
