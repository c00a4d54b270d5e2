package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeleval/pkg/errors"
)

// observedClasses は真値と予測値に現れるユニークなクラスラベルを昇順で返す
func observedClasses(op string, yTrue, yPred *mat.VecDense) ([]int, error) {
	seen := map[int]struct{}{}
	collect := func(v *mat.VecDense) error {
		for i := 0; i < v.Len(); i++ {
			f := v.AtVec(i)
			iv := int(f)
			if float64(iv) != f {
				return errors.NewValueError(op, "class labels must be integers")
			}
			seen[iv] = struct{}{}
		}
		return nil
	}
	if err := collect(yTrue); err != nil {
		return nil, err
	}
	if err := collect(yPred); err != nil {
		return nil, err
	}

	classes := make([]int, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return classes, nil
}

// macroAverage はクラスごとの指標をマクロ平均する。
// perClass は混同行列とクラスインデックスから1クラス分の値を計算する。
func macroAverage(op string, yTrue, yPred *mat.VecDense, perClass func(cm *mat.Dense, k int) float64) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}

	classes, err := observedClasses(op, yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if len(classes) < 2 {
		return 0, errors.NewValueError(op, "need at least two classes")
	}

	cm, err := ConfusionMatrix(yTrue, yPred, classes)
	if err != nil {
		return 0, err
	}

	var sum float64
	for k := range classes {
		sum += perClass(cm, k)
	}
	return sum / float64(len(classes)), nil
}

// classPrecision はクラスkの適合率を混同行列から計算する（未定義なら0）
func classPrecision(cm *mat.Dense, k int) float64 {
	r, _ := cm.Dims()
	var predicted float64
	for i := 0; i < r; i++ {
		predicted += cm.At(i, k)
	}
	if predicted == 0 {
		return 0
	}
	return cm.At(k, k) / predicted
}

// classRecall はクラスkの再現率を混同行列から計算する（未定義なら0）
func classRecall(cm *mat.Dense, k int) float64 {
	_, c := cm.Dims()
	var actual float64
	for j := 0; j < c; j++ {
		actual += cm.At(k, j)
	}
	if actual == 0 {
		return 0
	}
	return cm.At(k, k) / actual
}

// MacroPrecision はクラスごとの適合率のマクロ平均を計算する
func MacroPrecision(yTrue, yPred *mat.VecDense) (float64, error) {
	return macroAverage("MacroPrecision", yTrue, yPred, classPrecision)
}

// MacroRecall はクラスごとの再現率のマクロ平均を計算する
func MacroRecall(yTrue, yPred *mat.VecDense) (float64, error) {
	return macroAverage("MacroRecall", yTrue, yPred, classRecall)
}

// MacroF1 はクラスごとのF1スコアのマクロ平均を計算する
func MacroF1(yTrue, yPred *mat.VecDense) (float64, error) {
	return macroAverage("MacroF1", yTrue, yPred, func(cm *mat.Dense, k int) float64 {
		p := classPrecision(cm, k)
		r := classRecall(cm, k)
		if p+r == 0 {
			return 0
		}
		return 2 * p * r / (p + r)
	})
}
