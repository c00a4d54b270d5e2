// Package plot は評価レポートをgonum/plotで描画します。
// タスク種別に対応しないプロット種別は黙ってスキップされます
// （エラーにはなりません）。
package plot

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/modeleval/pkg/errors"
)

// プロット種別
const (
	KindROC             = "roc"
	KindPrecisionRecall = "precision_recall"
	KindGain            = "gain"
	KindLift            = "lift"
	KindConfusionMatrix = "confusion_matrix"
	KindResiduals       = "residuals"
	KindResidualsHist   = "residuals_hist"
)

// DefaultKinds はすべてのプロット種別（タスクに合わないものはスキップされる）
var DefaultKinds = []string{
	KindROC,
	KindPrecisionRecall,
	KindGain,
	KindLift,
	KindConfusionMatrix,
	KindResiduals,
	KindResidualsHist,
}

// Options は描画の設定。YAMLファイルからも読み込める。
type Options struct {
	// Kinds は描画するプロット種別。空の場合はDefaultKindsを使う。
	Kinds []string `yaml:"plots"`

	// IncludeBaseline はランダム分類器の基準線を重ねる
	IncludeBaseline bool `yaml:"baseline"`

	// UseTrainingData は訓練パーティションに対するプロットも描画する
	UseTrainingData bool `yaml:"use_training_data"`

	// OutputDir は出力先ディレクトリ（デフォルト: カレントディレクトリ）
	OutputDir string `yaml:"output_dir"`

	// Format は出力形式（"png" または "svg"、デフォルト: "png"）
	Format string `yaml:"format"`
}

// LoadOptions はYAMLファイルから描画設定を読み込む
func LoadOptions(path string) (Options, error) {
	var opts Options
	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, errors.NewDataAccessError(path, "cannot read render options", err)
	}
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return opts, errors.NewDataAccessError(path, "malformed render options", err)
	}
	if err := opts.validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func (o *Options) validate() error {
	switch o.Format {
	case "", "png", "svg":
		return nil
	default:
		return errors.NewInvalidParameterError("plot.Options", "format", "must be 'png' or 'svg'", o.Format)
	}
}

func (o *Options) kinds() []string {
	if len(o.Kinds) == 0 {
		return DefaultKinds
	}
	return o.Kinds
}

func (o *Options) format() string {
	if o.Format == "" {
		return "png"
	}
	return o.Format
}

func (o *Options) outputDir() string {
	if o.OutputDir == "" {
		return "."
	}
	return o.OutputDir
}
