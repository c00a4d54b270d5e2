// Package dataset はラベル付きデータセットの読み込みと分割を提供します。
// 特徴量行列とターゲット列を保持し、訓練/テストへの分割、
// k-fold分割、CSVからの読み込みをサポートします。
package dataset

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeleval/pkg/errors"
)

// Dataset は特徴量行列とターゲット列を持つラベル付きデータセット
type Dataset struct {
	x            *mat.Dense
	y            *mat.VecDense
	featureNames []string
	targetName   string
}

// FromMatrix はメモリ上の行列からデータセットを作成する
func FromMatrix(X *mat.Dense, y *mat.VecDense, featureNames []string, targetName string) (*Dataset, error) {
	if X == nil || y == nil {
		return nil, errors.NewValueError("dataset.FromMatrix", "X and y must not be nil")
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError("dataset.FromMatrix", "empty feature matrix")
	}
	if y.Len() != r {
		return nil, errors.NewDimensionError("dataset.FromMatrix", r, y.Len(), 0)
	}
	if featureNames != nil && len(featureNames) != c {
		return nil, errors.NewDimensionError("dataset.FromMatrix", c, len(featureNames), 1)
	}
	if featureNames == nil {
		featureNames = defaultFeatureNames(c)
	}
	return &Dataset{x: X, y: y, featureNames: featureNames, targetName: targetName}, nil
}

func defaultFeatureNames(c int) []string {
	names := make([]string, c)
	for i := range names {
		names[i] = "x" + strconv.Itoa(i)
	}
	return names
}

// X は特徴量行列を返す（n_samples × n_features）
func (d *Dataset) X() *mat.Dense {
	return d.x
}

// Y はターゲット列をベクトルとして返す
func (d *Dataset) Y() *mat.VecDense {
	return d.y
}

// YMatrix はターゲット列をn×1行列として返す
func (d *Dataset) YMatrix() mat.Matrix {
	n := d.y.Len()
	m := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		m.Set(i, 0, d.y.AtVec(i))
	}
	return m
}

// NumRows はサンプル数を返す
func (d *Dataset) NumRows() int {
	r, _ := d.x.Dims()
	return r
}

// NumFeatures は特徴量の数を返す
func (d *Dataset) NumFeatures() int {
	_, c := d.x.Dims()
	return c
}

// FeatureNames は特徴量名を返す
func (d *Dataset) FeatureNames() []string {
	return d.featureNames
}

// TargetName はターゲット列の名前を返す
func (d *Dataset) TargetName() string {
	return d.targetName
}

// Select は指定した行インデックスからなる新しいデータセットを返す
func (d *Dataset) Select(indices []int) (*Dataset, error) {
	if len(indices) == 0 {
		return nil, errors.NewValueError("dataset.Select", "empty index set")
	}
	n := d.NumRows()
	c := d.NumFeatures()

	x := mat.NewDense(len(indices), c, nil)
	y := mat.NewVecDense(len(indices), nil)
	for i, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, errors.NewValueError("dataset.Select", "index out of range")
		}
		for j := 0; j < c; j++ {
			x.Set(i, j, d.x.At(idx, j))
		}
		y.SetVec(i, d.y.AtVec(idx))
	}
	return &Dataset{x: x, y: y, featureNames: d.featureNames, targetName: d.targetName}, nil
}

// Classes はターゲット列に現れるユニークなクラスラベルを昇順で返す。
// ターゲットが整数値でない場合はエラーを返す。
func (d *Dataset) Classes() ([]int, error) {
	seen := map[int]struct{}{}
	for i := 0; i < d.y.Len(); i++ {
		v := d.y.AtVec(i)
		iv := int(v)
		if float64(iv) != v {
			return nil, errors.NewValueError("dataset.Classes", "target contains non-integer values")
		}
		seen[iv] = struct{}{}
	}
	classes := make([]int, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return classes, nil
}
