package evaluate

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeleval/dataset"
	"github.com/YuminosukeSato/modeleval/metrics"
	"github.com/YuminosukeSato/modeleval/pkg/errors"
	"github.com/YuminosukeSato/modeleval/pkg/log"
)

// MetricFunc は評価指標の関数型。
// yPredは分類タスクでは予測ラベル、回帰タスクでは予測値。
type MetricFunc func(yTrue, yPred *mat.VecDense) (float64, error)

// metricEntry はレジストリ上の1つの指標
type metricEntry struct {
	name    string
	fn      MetricFunc
	builtin bool
	// useScore が真の場合、yPredの代わりに正例クラスの予測確率を渡す
	// （二値分類の組み込み指標のみ）
	useScore bool
}

// Evaluator はモデルと指標のレジストリを保持し、レポートを構築する。
// レジストリへの並行アクセスはサポートしない（単一ゴルーチンでの
// バッチ実行を想定）。
type Evaluator struct {
	task    TaskKind
	train   *dataset.Dataset // 省略可能
	test    *dataset.Dataset
	models  []*Model      // 挿入順を保持
	metrics []metricEntry // 組み込みが先、以後は挿入順
}

// NewEvaluator は新しいEvaluatorを作成する。
// testは必須、trainは省略可能（nilの場合、訓練パーティションに対する
// レポートは構築できない）。組み込み指標はタスク種別に応じて登録される。
func NewEvaluator(task TaskKind, train, test *dataset.Dataset, models ...*Model) (*Evaluator, error) {
	if test == nil {
		return nil, errors.NewValueError("evaluate.NewEvaluator", "test dataset must not be nil")
	}

	ev := &Evaluator{
		task:    task,
		train:   train,
		test:    test,
		metrics: builtinMetrics(task),
	}
	if err := ev.AddModels(models...); err != nil {
		return nil, err
	}
	return ev, nil
}

// builtinMetrics はタスク種別ごとの組み込み指標を返す
func builtinMetrics(task TaskKind) []metricEntry {
	switch task {
	case BinaryClassification:
		return []metricEntry{
			{name: "accuracy", fn: metrics.Accuracy, builtin: true},
			{name: "precision", fn: metrics.Precision, builtin: true},
			{name: "recall", fn: metrics.Recall, builtin: true},
			{name: "f1_score", fn: metrics.F1Score, builtin: true},
			{name: "roc_auc", fn: metrics.ROCAUC, builtin: true, useScore: true},
			{name: "log_loss", fn: metrics.LogLoss, builtin: true, useScore: true},
		}
	case MultiClassification:
		return []metricEntry{
			{name: "accuracy", fn: metrics.Accuracy, builtin: true},
			{name: "macro_precision", fn: metrics.MacroPrecision, builtin: true},
			{name: "macro_recall", fn: metrics.MacroRecall, builtin: true},
			{name: "macro_f1", fn: metrics.MacroF1, builtin: true},
		}
	case Regression:
		return []metricEntry{
			{name: "mse", fn: metrics.MSE, builtin: true},
			{name: "rmse", fn: metrics.RMSE, builtin: true},
			{name: "mae", fn: metrics.MAE, builtin: true},
			{name: "median_ae", fn: metrics.MedianAE, builtin: true},
			{name: "r2", fn: metrics.R2Score, builtin: true},
		}
	default:
		return nil
	}
}

// Task はタスク種別を返す
func (ev *Evaluator) Task() TaskKind {
	return ev.task
}

// TestData はテストパーティションを返す
func (ev *Evaluator) TestData() *dataset.Dataset {
	return ev.test
}

// TrainData は訓練パーティションを返す（設定されていない場合はnil）
func (ev *Evaluator) TrainData() *dataset.Dataset {
	return ev.train
}

// Models は登録済みモデルを挿入順で返す
func (ev *Evaluator) Models() []*Model {
	return ev.models
}

// ModelNames は登録済みモデル名を挿入順で返す
func (ev *Evaluator) ModelNames() []string {
	names := make([]string, len(ev.models))
	for i, m := range ev.models {
		names[i] = m.Name()
	}
	return names
}

// MetricNames は登録済み指標名を返す（組み込みが先、以後は挿入順）
func (ev *Evaluator) MetricNames() []string {
	names := make([]string, len(ev.metrics))
	for i, m := range ev.metrics {
		names[i] = m.name
	}
	return names
}

// AddModels はモデルをレジストリに追加する。
// 名前が重複する場合はInvalidParameterErrorを返す。
func (ev *Evaluator) AddModels(models ...*Model) error {
	for _, m := range models {
		if m == nil {
			return errors.NewValueError("Evaluator.AddModels", "model must not be nil")
		}
		if ev.task.IsClassification() != m.IsClassifier() {
			return errors.NewInvalidParameterError("Evaluator.AddModels", "model",
				"model capabilities do not match the task kind", m.Name())
		}
		for _, existing := range ev.models {
			if existing.Name() == m.Name() {
				return errors.NewInvalidParameterError("Evaluator.AddModels", "name",
					"a model with this name is already registered", m.Name())
			}
		}
		ev.models = append(ev.models, m)
	}
	return nil
}

// DelModels はモデルを名前で削除する。
// 存在しない名前を指定した場合はNotFoundErrorを返す（暗黙の無視はしない）。
func (ev *Evaluator) DelModels(names ...string) error {
	for _, name := range names {
		found := false
		for i, m := range ev.models {
			if m.Name() == name {
				ev.models = append(ev.models[:i], ev.models[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return errors.NewNotFoundError("model", name)
		}
	}
	return nil
}

// AddMetrics はカスタム指標をレジストリに追加する。
// namesとfnsは同じ長さでなければならず、名前が重複する場合は
// InvalidParameterErrorを返す。カスタム指標には予測ラベル
// （回帰では予測値）が渡される。
func (ev *Evaluator) AddMetrics(names []string, fns []MetricFunc) error {
	if len(names) != len(fns) {
		return errors.NewDimensionError("Evaluator.AddMetrics", len(names), len(fns), 0)
	}
	for i, name := range names {
		if name == "" {
			return errors.NewValueError("Evaluator.AddMetrics", "metric name must not be empty")
		}
		if fns[i] == nil {
			return errors.NewValueError("Evaluator.AddMetrics", "metric function must not be nil")
		}
		for _, existing := range ev.metrics {
			if existing.name == name {
				return errors.NewInvalidParameterError("Evaluator.AddMetrics", "name",
					"a metric with this name is already registered", name)
			}
		}
		ev.metrics = append(ev.metrics, metricEntry{name: name, fn: fns[i]})
	}
	return nil
}

// DelMetrics は指標を名前で削除する。組み込み指標も削除できる。
// 存在しない名前を指定した場合はNotFoundErrorを返す。
func (ev *Evaluator) DelMetrics(names ...string) error {
	for _, name := range names {
		found := false
		for i, m := range ev.metrics {
			if m.name == name {
				ev.metrics = append(ev.metrics[:i], ev.metrics[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return errors.NewNotFoundError("metric", name)
		}
	}
	return nil
}

// ReportOption はレポート構築の設定オプション
type ReportOption func(*reportConfig)

type reportConfig struct {
	useTrainingData bool
}

// WithTrainingData は訓練パーティションに対する指標も計算する
func WithTrainingData() ReportOption {
	return func(c *reportConfig) {
		c.useTrainingData = true
	}
}

// Report は登録済みのすべての指標を、すべてのモデルについて計算する。
// 計算は純粋で、レジストリとデータが変わらない限り何度呼んでも同じ
// 結果を返す。途中でエラーが発生した場合、部分的なレポートは返さない。
func (ev *Evaluator) Report(opts ...ReportOption) (*Report, error) {
	cfg := &reportConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(ev.models) == 0 {
		return nil, errors.NewValueError("Evaluator.Report", "no models registered")
	}

	partitions := []partitionData{{name: PartitionTest, data: ev.test}}
	if cfg.useTrainingData {
		if ev.train == nil {
			return nil, errors.NewValueError("Evaluator.Report", "no training partition available")
		}
		partitions = append(partitions, partitionData{name: PartitionTrain, data: ev.train})
	}

	report := newReport(ev.task, ev.ModelNames(), ev.MetricNames())
	for _, part := range partitions {
		report.partitions = append(report.partitions, part.name)
		for _, m := range ev.models {
			if err := ev.evaluateModel(report, m, part); err != nil {
				return nil, err
			}
		}
	}

	slog.Debug("report built",
		log.OperationKey, "report",
		log.TaskKey, ev.task.String(),
		"models", len(ev.models),
		"metrics", len(ev.metrics),
	)
	return report, nil
}

type partitionData struct {
	name string
	data *dataset.Dataset
}

// remapBinary はクラスラベルを負例=0、正例=1に変換する
func remapBinary(y *mat.VecDense, classes []int) (*mat.VecDense, error) {
	if len(classes) != 2 {
		return nil, errors.NewValueError("evaluate.remapBinary", "exactly two classes are required")
	}
	out := mat.NewVecDense(y.Len(), nil)
	for i := 0; i < y.Len(); i++ {
		switch int(y.AtVec(i)) {
		case classes[0]:
			out.SetVec(i, 0)
		case classes[1]:
			out.SetVec(i, 1)
		default:
			return nil, errors.NewValueError("evaluate.remapBinary", "label outside the model's class set")
		}
	}
	return out, nil
}

// evaluateModel は1つのモデルを1つのパーティションで評価する
func (ev *Evaluator) evaluateModel(report *Report, m *Model, part partitionData) error {
	yTrue := part.data.Y()

	yPred, err := m.Predict(part.data.X())
	if err != nil {
		return errors.Wrapf(err, "predicting with model '%s' on %s partition", m.Name(), part.name)
	}

	// スコアベースの指標（roc_auc, log_loss）は正例確率を使う
	var yScore *mat.VecDense
	if ev.task == BinaryClassification {
		yScore, err = m.PositiveScores(part.data.X())
		if err != nil {
			return errors.Wrapf(err, "scoring with model '%s' on %s partition", m.Name(), part.name)
		}
		// 二値の組み込み指標は0/1ラベルを前提とするため、
		// クラスラベルを負例=0、正例=1に正規化する
		yTrue, err = remapBinary(yTrue, m.Classes())
		if err != nil {
			return errors.Wrapf(err, "normalizing true labels for model '%s'", m.Name())
		}
		yPred, err = remapBinary(yPred, m.Classes())
		if err != nil {
			return errors.Wrapf(err, "normalizing predicted labels for model '%s'", m.Name())
		}
	}

	for _, entry := range ev.metrics {
		input := yPred
		if entry.useScore {
			if yScore == nil {
				continue
			}
			input = yScore
		}

		var value float64
		// ユーザ定義の指標関数はパニックする可能性があるため保護する
		err := errors.SafeExecute("metric "+entry.name, func() error {
			v, err := entry.fn(yTrue, input)
			if err != nil {
				return err
			}
			value = v
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "computing metric '%s' for model '%s' on %s partition",
				entry.name, m.Name(), part.name)
		}
		report.set(part.name, m.Name(), entry.name, value)
	}
	return nil
}

// CostWeights は混同行列の各セルに対する重み
type CostWeights struct {
	TN float64
	FP float64
	FN float64
	TP float64
}

// WeightedCost は2×2混同行列に対する重み付きコストを計算する。
// 行列は行が真のクラス、列が予測クラス（クラス昇順）。
func WeightedCost(cm *mat.Dense, w CostWeights) (float64, error) {
	r, c := cm.Dims()
	if r != 2 || c != 2 {
		return 0, errors.NewDimensionError("evaluate.WeightedCost", 2, r, 0)
	}
	tn := cm.At(0, 0)
	fp := cm.At(0, 1)
	fn := cm.At(1, 0)
	tp := cm.At(1, 1)
	return w.TN*tn + w.FP*fp + w.FN*fn + w.TP*tp, nil
}

// Cost はテストパーティションの混同行列に対する重み付きコストを
// モデルごとに計算する。二値分類タスク専用で、それ以外のタスクでは
// UnsupportedOperationErrorを返す。
func (ev *Evaluator) Cost(w CostWeights) (map[string]float64, error) {
	if ev.task != BinaryClassification {
		return nil, errors.NewUnsupportedOperationError("Cost", ev.task.String())
	}
	if len(ev.models) == 0 {
		return nil, errors.NewValueError("Evaluator.Cost", "no models registered")
	}

	costs := make(map[string]float64, len(ev.models))
	for _, m := range ev.models {
		yPred, err := m.Predict(ev.test.X())
		if err != nil {
			return nil, errors.Wrapf(err, "predicting with model '%s'", m.Name())
		}
		cm, err := metrics.ConfusionMatrix(ev.test.Y(), yPred, m.Classes())
		if err != nil {
			return nil, errors.Wrapf(err, "confusion matrix for model '%s'", m.Name())
		}
		cost, err := WeightedCost(cm, w)
		if err != nil {
			return nil, err
		}
		costs[m.Name()] = cost
	}
	return costs, nil
}
