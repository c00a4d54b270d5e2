package dataset

import (
	"encoding/csv"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeleval/pkg/errors"
	"github.com/YuminosukeSato/modeleval/pkg/log"
)

// LoadOption はCSV読み込みの設定オプション
type LoadOption func(*loadConfig)

type loadConfig struct {
	comma          rune
	sampleFraction float64
	sampleSeed     uint64
}

// WithComma は区切り文字を設定する（デフォルト: ','）
func WithComma(comma rune) LoadOption {
	return func(c *loadConfig) {
		c.comma = comma
	}
}

// WithSampleFraction は読み込み後に行をシード付きでサブサンプルする割合を設定する
func WithSampleFraction(fraction float64, seed uint64) LoadOption {
	return func(c *loadConfig) {
		c.sampleFraction = fraction
		c.sampleSeed = seed
	}
}

// FromCSV はヘッダ付きCSVファイルからデータセットを読み込む。
// target はターゲット列の名前で、残りの列はすべて特徴量として扱われる。
// ファイルが開けない・CSVが不正・ターゲット列が存在しない場合は
// DataAccessError を返す。
func FromCSV(path, target string, opts ...LoadOption) (*Dataset, error) {
	cfg := &loadConfig{comma: ','}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.sampleFraction != 0 && (cfg.sampleFraction <= 0 || cfg.sampleFraction > 1) {
		return nil, errors.NewInvalidParameterError("dataset.FromCSV", "sampleFraction", "must be in (0, 1]", cfg.sampleFraction)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataAccessError(path, "cannot open file", err)
	}
	defer f.Close()

	ds, err := readCSV(f, path, target, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.sampleFraction > 0 && cfg.sampleFraction < 1 {
		ds, err = ds.sample(cfg.sampleFraction, cfg.sampleSeed)
		if err != nil {
			return nil, err
		}
	}

	slog.Debug("dataset loaded",
		log.OperationKey, "load",
		log.SourceKey, path,
		log.TargetKey, target,
		log.SamplesKey, ds.NumRows(),
		log.FeaturesKey, ds.NumFeatures(),
	)
	return ds, nil
}

func readCSV(r io.Reader, source, target string, cfg *loadConfig) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = cfg.comma

	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewDataAccessError(source, "cannot read header", err)
	}

	targetIdx := -1
	featureNames := make([]string, 0, len(header)-1)
	for i, name := range header {
		if name == target {
			targetIdx = i
			continue
		}
		featureNames = append(featureNames, name)
	}
	if targetIdx < 0 {
		return nil, errors.NewDataAccessError(source, "target column '"+target+"' not found", nil)
	}
	if len(featureNames) == 0 {
		return nil, errors.NewDataAccessError(source, "no feature columns besides target", nil)
	}

	var features []float64
	var targets []float64
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewDataAccessError(source, "malformed CSV at row "+strconv.Itoa(row), err)
		}
		if len(record) != len(header) {
			return nil, errors.NewDataAccessError(source, "wrong field count at row "+strconv.Itoa(row), nil)
		}
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.NewDataAccessError(source,
					"non-numeric value '"+field+"' in column '"+header[i]+"' at row "+strconv.Itoa(row), err)
			}
			if i == targetIdx {
				targets = append(targets, v)
			} else {
				features = append(features, v)
			}
		}
		row++
	}

	if len(targets) == 0 {
		return nil, errors.NewDataAccessError(source, "no data rows", nil)
	}

	x := mat.NewDense(len(targets), len(featureNames), features)
	y := mat.NewVecDense(len(targets), targets)
	return &Dataset{x: x, y: y, featureNames: featureNames, targetName: target}, nil
}

// sample は行をシード付きでサブサンプルする
func (d *Dataset) sample(fraction float64, seed uint64) (*Dataset, error) {
	n := d.NumRows()
	keep := int(float64(n)*fraction + 0.5)
	if keep < 1 {
		keep = 1
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	// 元の行順を保ったままサブサンプルする
	kept := append([]int(nil), indices[:keep]...)
	sort.Ints(kept)
	return d.Select(kept)
}
