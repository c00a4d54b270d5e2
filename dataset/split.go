package dataset

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/modeleval/pkg/errors"
	"github.com/YuminosukeSato/modeleval/pkg/log"
)

// SplitOption は訓練/テスト分割の設定オプション
type SplitOption func(*splitConfig)

type splitConfig struct {
	seed    uint64
	shuffle bool
}

// WithSeed は分割のシャッフルに使う乱数シードを設定する
func WithSeed(seed uint64) SplitOption {
	return func(c *splitConfig) {
		c.seed = seed
	}
}

// WithoutShuffle はシャッフルせず行順のまま末尾をテストに割り当てる
func WithoutShuffle() SplitOption {
	return func(c *splitConfig) {
		c.shuffle = false
	}
}

// Split はデータセットを訓練用とテスト用に分割する。
// testFraction は (0, 1) の範囲でなければならず、範囲外の場合は
// InvalidParameterError を返す。分割後の2つのパーティションは互いに素で、
// 合併すると元のデータセット全体になる。
func (d *Dataset) Split(testFraction float64, opts ...SplitOption) (train, test *Dataset, err error) {
	if testFraction <= 0 || testFraction >= 1 || math.IsNaN(testFraction) {
		return nil, nil, errors.NewInvalidParameterError("dataset.Split", "testFraction", "must be in (0, 1)", testFraction)
	}

	cfg := &splitConfig{shuffle: true}
	for _, opt := range opts {
		opt(cfg)
	}

	n := d.NumRows()
	if n < 2 {
		return nil, nil, errors.NewValueError("dataset.Split", "need at least 2 rows to split")
	}
	testCount := int(math.Round(float64(n) * testFraction))
	if testCount < 1 {
		testCount = 1
	}
	if testCount >= n {
		testCount = n - 1
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if cfg.shuffle {
		r := rand.New(rand.NewPCG(cfg.seed, cfg.seed))
		r.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	trainIdx := indices[:n-testCount]
	testIdx := indices[n-testCount:]

	train, err = d.Select(trainIdx)
	if err != nil {
		return nil, nil, err
	}
	test, err = d.Select(testIdx)
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("dataset split",
		log.OperationKey, "split",
		log.TestFractionKey, testFraction,
		log.SeedKey, cfg.seed,
		"train_rows", train.NumRows(),
		"test_rows", test.NumRows(),
	)
	return train, test, nil
}

// Fold はk-fold分割の1つのフォールドを表す
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold はk-fold分割器
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    uint64
}

// NewKFold は新しいk-fold分割器を作成する（nSplits < 2 の場合は5に補正）
func NewKFold(nSplits int, shuffle bool, seed uint64) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// Split は各フォールドの訓練/テストインデックスを生成する
func (kf *KFold) Split(d *Dataset) []Fold {
	n := d.NumRows()

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(kf.Seed, kf.Seed))
		r.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := n / kf.NSplits
	remainder := n % kf.NSplits

	current := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		testIndices := make([]int, testSize)
		copy(testIndices, indices[current:current+testSize])

		trainIndices := make([]int, 0, n-testSize)
		trainIndices = append(trainIndices, indices[:current]...)
		trainIndices = append(trainIndices, indices[current+testSize:]...)

		folds[i] = Fold{TrainIndices: trainIndices, TestIndices: testIndices}
		current += testSize
	}
	return folds
}
