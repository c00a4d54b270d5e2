package plot

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/modeleval/dataset"
	"github.com/YuminosukeSato/modeleval/evaluate"
	"github.com/YuminosukeSato/modeleval/metrics"
	"github.com/YuminosukeSato/modeleval/pkg/errors"
	"github.com/YuminosukeSato/modeleval/pkg/log"
)

// Artifact は描画された1つのプロットファイル
type Artifact struct {
	Kind      string
	Model     string // モデルごとのプロットのみ（結合プロットでは空）
	Partition string
	Path      string
}

const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4.5 * vg.Inch
)

// Render は登録済みモデルのプロットを描画してファイルに保存する。
// タスク種別に対応しない種別はスキップされ、返り値のArtifactにも
// 含まれない。
func Render(ev *evaluate.Evaluator, opts Options) ([]Artifact, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(ev.Models()) == 0 {
		return nil, errors.NewValueError("plot.Render", "no models registered")
	}
	if opts.UseTrainingData && ev.TrainData() == nil {
		return nil, errors.NewValueError("plot.Render", "no training partition available")
	}
	if err := os.MkdirAll(opts.outputDir(), 0o755); err != nil {
		return nil, errors.NewDataAccessError(opts.outputDir(), "cannot create output directory", err)
	}

	partitions := []struct {
		name string
		data *dataset.Dataset
	}{
		{evaluate.PartitionTest, ev.TestData()},
	}
	if opts.UseTrainingData {
		partitions = append(partitions, struct {
			name string
			data *dataset.Dataset
		}{evaluate.PartitionTrain, ev.TrainData()})
	}

	r := renderer{ev: ev, opts: opts}
	var artifacts []Artifact
	for _, part := range partitions {
		for _, kind := range opts.kinds() {
			if !supportsKind(ev.Task(), kind) {
				continue
			}
			made, err := r.renderKind(kind, part.name, part.data)
			if err != nil {
				return nil, err
			}
			artifacts = append(artifacts, made...)
		}
	}

	slog.Debug("plots rendered",
		log.OperationKey, "render",
		log.TaskKey, ev.Task().String(),
		"artifacts", len(artifacts),
	)
	return artifacts, nil
}

// supportsKind はプロット種別がタスク種別で意味を持つかどうかを返す
func supportsKind(task evaluate.TaskKind, kind string) bool {
	switch kind {
	case KindROC, KindPrecisionRecall, KindGain, KindLift:
		return task == evaluate.BinaryClassification
	case KindConfusionMatrix:
		return task.IsClassification()
	case KindResiduals, KindResidualsHist:
		return task == evaluate.Regression
	default:
		// 未知の種別もノーオペ扱い
		return false
	}
}

type renderer struct {
	ev   *evaluate.Evaluator
	opts Options
}

func (r *renderer) renderKind(kind, partition string, data *dataset.Dataset) ([]Artifact, error) {
	switch kind {
	case KindROC:
		return r.renderCurves(kind, partition, data, "False positive rate", "True positive rate",
			metrics.ROCCurve, baselineDiagonal)
	case KindPrecisionRecall:
		return r.renderCurves(kind, partition, data, "Recall", "Precision",
			metrics.PrecisionRecallCurve, nil)
	case KindGain:
		return r.renderCurves(kind, partition, data, "Fraction of sample", "Fraction of positives",
			metrics.CumulativeGainCurve, baselineDiagonal)
	case KindLift:
		return r.renderCurves(kind, partition, data, "Fraction of sample", "Lift",
			metrics.LiftCurve, baselineFlat)
	case KindConfusionMatrix:
		return r.renderConfusionMatrices(partition, data)
	case KindResiduals:
		return r.renderResiduals(partition, data)
	case KindResidualsHist:
		return r.renderResidualHists(partition, data)
	default:
		return nil, nil
	}
}

func (r *renderer) fileFor(kind, model, partition string) string {
	parts := []string{kind}
	if model != "" {
		parts = append(parts, sanitize(model))
	}
	parts = append(parts, partition)
	return filepath.Join(r.opts.outputDir(), strings.Join(parts, "_")+"."+r.opts.format())
}

func sanitize(name string) string {
	return strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return c
		default:
			return '_'
		}
	}, name)
}

// baselineDiagonal はランダム分類器の対角基準線
func baselineDiagonal() plotter.XYs {
	return plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}}
}

// baselineFlat はリフト1.0の水平基準線
func baselineFlat() plotter.XYs {
	return plotter.XYs{{X: 0, Y: 1}, {X: 1, Y: 1}}
}

// curveFunc は二値分類の評価曲線を計算する
type curveFunc func(yTrue, yScore *mat.VecDense) ([]metrics.CurvePoint, error)

// renderCurves はモデルごとの曲線を1枚のプロットに重ねて描画する
func (r *renderer) renderCurves(kind, partition string, data *dataset.Dataset, xLabel, yLabel string,
	curve curveFunc, baseline func() plotter.XYs) ([]Artifact, error) {

	p := gplot.New()
	p.Title.Text = strings.ReplaceAll(kind, "_", " ") + " (" + partition + ")"
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	var lineArgs []interface{}
	for _, m := range r.ev.Models() {
		scores, err := m.PositiveScores(data.X())
		if err != nil {
			return nil, errors.Wrapf(err, "scoring with model '%s'", m.Name())
		}
		yTrue, err := binaryTargets(data, m.Classes())
		if err != nil {
			return nil, err
		}
		points, err := curve(yTrue, scores)
		if err != nil {
			return nil, errors.Wrapf(err, "computing %s curve for model '%s'", kind, m.Name())
		}

		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			xys[i].X = pt.X
			xys[i].Y = pt.Y
		}
		lineArgs = append(lineArgs, m.Name(), xys)
	}
	if r.opts.IncludeBaseline && baseline != nil {
		lineArgs = append(lineArgs, "baseline", baseline())
	}

	if err := plotutil.AddLines(p, lineArgs...); err != nil {
		return nil, errors.Wrap(err, "adding curves to plot")
	}

	path := r.fileFor(kind, "", partition)
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return nil, errors.Wrapf(err, "saving plot %s", path)
	}
	return []Artifact{{Kind: kind, Partition: partition, Path: path}}, nil
}

// binaryTargets はターゲット列を負例=0、正例=1に正規化する
func binaryTargets(data *dataset.Dataset, classes []int) (*mat.VecDense, error) {
	if len(classes) != 2 {
		return nil, errors.NewValueError("plot.binaryTargets", "exactly two classes are required")
	}
	y := data.Y()
	out := mat.NewVecDense(y.Len(), nil)
	for i := 0; i < y.Len(); i++ {
		switch int(y.AtVec(i)) {
		case classes[0]:
			out.SetVec(i, 0)
		case classes[1]:
			out.SetVec(i, 1)
		default:
			return nil, errors.NewValueError("plot.binaryTargets", "label outside the model's class set")
		}
	}
	return out, nil
}

// confusionGrid はヒートマップ描画のためのGridXYZ実装
type confusionGrid struct {
	cm *mat.Dense
}

func (g confusionGrid) Dims() (int, int) {
	r, c := g.cm.Dims()
	return c, r
}

func (g confusionGrid) Z(c, r int) float64 {
	rows, _ := g.cm.Dims()
	// 行0（最初のクラス）をプロット上段に置くため上下反転する
	return g.cm.At(rows-1-r, c)
}

func (g confusionGrid) X(c int) float64 { return float64(c) }
func (g confusionGrid) Y(r int) float64 { return float64(r) }

// renderConfusionMatrices はモデルごとに混同行列のヒートマップを描画する
func (r *renderer) renderConfusionMatrices(partition string, data *dataset.Dataset) ([]Artifact, error) {
	var artifacts []Artifact
	for _, m := range r.ev.Models() {
		yPred, err := m.Predict(data.X())
		if err != nil {
			return nil, errors.Wrapf(err, "predicting with model '%s'", m.Name())
		}
		cm, err := metrics.ConfusionMatrix(data.Y(), yPred, m.Classes())
		if err != nil {
			return nil, errors.Wrapf(err, "confusion matrix for model '%s'", m.Name())
		}

		p := gplot.New()
		p.Title.Text = "confusion matrix: " + m.Name() + " (" + partition + ")"
		p.X.Label.Text = "predicted class"
		p.Y.Label.Text = "true class"

		heat := plotter.NewHeatMap(confusionGrid{cm: cm}, palette.Heat(12, 1))
		p.Add(heat)

		path := r.fileFor(KindConfusionMatrix, m.Name(), partition)
		if err := p.Save(plotWidth, plotHeight, path); err != nil {
			return nil, errors.Wrapf(err, "saving plot %s", path)
		}
		artifacts = append(artifacts, Artifact{
			Kind: KindConfusionMatrix, Model: m.Name(), Partition: partition, Path: path,
		})
	}
	return artifacts, nil
}

// renderResiduals は予測値に対する残差の散布図を描画する
func (r *renderer) renderResiduals(partition string, data *dataset.Dataset) ([]Artifact, error) {
	p := gplot.New()
	p.Title.Text = "residuals (" + partition + ")"
	p.X.Label.Text = "predicted value"
	p.Y.Label.Text = "residual"

	var scatterArgs []interface{}
	for _, m := range r.ev.Models() {
		yPred, err := m.Predict(data.X())
		if err != nil {
			return nil, errors.Wrapf(err, "predicting with model '%s'", m.Name())
		}
		y := data.Y()
		xys := make(plotter.XYs, y.Len())
		for i := 0; i < y.Len(); i++ {
			xys[i].X = yPred.AtVec(i)
			xys[i].Y = y.AtVec(i) - yPred.AtVec(i)
		}
		scatterArgs = append(scatterArgs, m.Name(), xys)
	}

	if err := plotutil.AddScatters(p, scatterArgs...); err != nil {
		return nil, errors.Wrap(err, "adding residual scatters to plot")
	}

	path := r.fileFor(KindResiduals, "", partition)
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return nil, errors.Wrapf(err, "saving plot %s", path)
	}
	return []Artifact{{Kind: KindResiduals, Partition: partition, Path: path}}, nil
}

// renderResidualHists はモデルごとの残差ヒストグラムを描画する
func (r *renderer) renderResidualHists(partition string, data *dataset.Dataset) ([]Artifact, error) {
	var artifacts []Artifact
	for _, m := range r.ev.Models() {
		yPred, err := m.Predict(data.X())
		if err != nil {
			return nil, errors.Wrapf(err, "predicting with model '%s'", m.Name())
		}
		y := data.Y()
		residuals := make(plotter.Values, y.Len())
		for i := 0; i < y.Len(); i++ {
			residuals[i] = y.AtVec(i) - yPred.AtVec(i)
		}

		p := gplot.New()
		p.Title.Text = "residual distribution: " + m.Name() + " (" + partition + ")"
		p.X.Label.Text = "residual"
		p.Y.Label.Text = "count"

		hist, err := plotter.NewHist(residuals, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "building residual histogram for model '%s'", m.Name())
		}
		p.Add(hist)

		path := r.fileFor(KindResidualsHist, m.Name(), partition)
		if err := p.Save(plotWidth, plotHeight, path); err != nil {
			return nil, errors.Wrapf(err, "saving plot %s", path)
		}
		artifacts = append(artifacts, Artifact{
			Kind: KindResidualsHist, Model: m.Name(), Partition: partition, Path: path,
		})
	}
	return artifacts, nil
}
