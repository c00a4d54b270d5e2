package evaluate

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeleval/dataset"
	"github.com/YuminosukeSato/modeleval/pkg/errors"
)

func makeRegressionDataset(t *testing.T, n int) *dataset.Dataset {
	t.Helper()
	features := make([]float64, n)
	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		features[i] = float64(i)
		targets[i] = 2 * float64(i)
	}
	ds, err := dataset.FromMatrix(mat.NewDense(n, 1, features), mat.NewVecDense(n, targets), nil, "y")
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

// makeBinaryDataset builds a 4-row dataset with targets 0,0,1,1.
func makeBinaryDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := mat.NewVecDense(4, []float64{0, 0, 1, 1})
	ds, err := dataset.FromMatrix(X, y, nil, "label")
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func perfectClassifier(t *testing.T, name string) *Model {
	t.Helper()
	clf := &stubClassifier{
		labels:  []float64{0, 0, 1, 1},
		scores:  []float64{0.1, 0.2, 0.8, 0.9},
		classes: []int{0, 1},
	}
	m, err := Wrap(clf, name, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestReportBinaryClassification(t *testing.T) {
	ds := makeBinaryDataset(t)
	ev, err := NewEvaluator(BinaryClassification, nil, ds, perfectClassifier(t, "perfect"))
	if err != nil {
		t.Fatal(err)
	}

	report, err := ev.Report()
	if err != nil {
		t.Fatal(err)
	}

	wantValues := map[string]float64{
		"accuracy":  1.0,
		"precision": 1.0,
		"recall":    1.0,
		"f1_score":  1.0,
		"roc_auc":   1.0,
	}
	for metric, want := range wantValues {
		got, ok := report.Value("perfect", metric, PartitionTest)
		if !ok {
			t.Fatalf("metric %q missing from report", metric)
		}
		if math.Abs(got-want) > 1e-10 {
			t.Errorf("%s = %v, want %v", metric, got, want)
		}
	}

	// Built-ins come first and keep their defined order.
	names := report.MetricNames()
	wantOrder := []string{"accuracy", "precision", "recall", "f1_score", "roc_auc", "log_loss"}
	for i, want := range wantOrder {
		if names[i] != want {
			t.Errorf("MetricNames()[%d] = %q, want %q", i, names[i], want)
		}
	}
}

// makeMulticlassDataset builds a 6-row dataset with targets 0,0,1,1,2,2.
func makeMulticlassDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	X := mat.NewDense(6, 1, []float64{0, 1, 2, 3, 4, 5})
	y := mat.NewVecDense(6, []float64{0, 0, 1, 1, 2, 2})
	ds, err := dataset.FromMatrix(X, y, nil, "label")
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestReportMultiClassification(t *testing.T) {
	ds := makeMulticlassDataset(t)
	// クラス2の1件をクラス1に誤分類する固定モデル
	clf := &stubMulticlass{labels: []float64{0, 0, 1, 1, 2, 1}}
	m, err := Wrap(clf, "triple", nil)
	if err != nil {
		t.Fatal(err)
	}
	ev, err := NewEvaluator(MultiClassification, nil, ds, m)
	if err != nil {
		t.Fatal(err)
	}

	report, err := ev.Report()
	if err != nil {
		t.Fatal(err)
	}

	// クラスごとの (適合率, 再現率): 0→(1, 1), 1→(2/3, 1), 2→(1, 1/2)
	wantValues := map[string]float64{
		"accuracy":        5.0 / 6.0,
		"macro_precision": 8.0 / 9.0,
		"macro_recall":    5.0 / 6.0,
		"macro_f1":        (1.0 + 0.8 + 2.0/3.0) / 3.0,
	}
	for metric, want := range wantValues {
		got, ok := report.Value("triple", metric, PartitionTest)
		if !ok {
			t.Fatalf("metric %q missing from report", metric)
		}
		if math.Abs(got-want) > 1e-10 {
			t.Errorf("%s = %v, want %v", metric, got, want)
		}
	}

	names := report.MetricNames()
	wantOrder := []string{"accuracy", "macro_precision", "macro_recall", "macro_f1"}
	for i, want := range wantOrder {
		if names[i] != want {
			t.Errorf("MetricNames()[%d] = %q, want %q", i, names[i], want)
		}
	}
}

func TestCostUnsupportedForMulticlass(t *testing.T) {
	ds := makeMulticlassDataset(t)
	m, err := Wrap(&stubMulticlass{labels: []float64{0, 0, 1, 1, 2, 2}}, "triple", nil)
	if err != nil {
		t.Fatal(err)
	}
	ev, err := NewEvaluator(MultiClassification, nil, ds, m)
	if err != nil {
		t.Fatal(err)
	}

	_, err = ev.Cost(CostWeights{FP: 1, FN: 1})
	if err == nil {
		t.Fatal("Cost should fail for multiclass tasks")
	}
	var unsupported *errors.UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Errorf("error %v is not an UnsupportedOperationError", err)
	}
}

func TestReportIdempotent(t *testing.T) {
	ds := makeBinaryDataset(t)
	ev, err := NewEvaluator(BinaryClassification, nil, ds, perfectClassifier(t, "clf"))
	if err != nil {
		t.Fatal(err)
	}

	first, err := ev.Report()
	if err != nil {
		t.Fatal(err)
	}
	second, err := ev.Report()
	if err != nil {
		t.Fatal(err)
	}

	for _, metric := range first.MetricNames() {
		v1, ok1 := first.Value("clf", metric, PartitionTest)
		v2, ok2 := second.Value("clf", metric, PartitionTest)
		if ok1 != ok2 || v1 != v2 {
			t.Errorf("metric %q differs between identical runs: %v vs %v", metric, v1, v2)
		}
	}
}

func TestModelRoundTrip(t *testing.T) {
	ds := makeBinaryDataset(t)
	ev, err := NewEvaluator(BinaryClassification, nil, ds, perfectClassifier(t, "base"))
	if err != nil {
		t.Fatal(err)
	}

	before, err := ev.Report()
	if err != nil {
		t.Fatal(err)
	}

	// Add a second model, then remove it again.
	if err := ev.AddModels(perfectClassifier(t, "extra")); err != nil {
		t.Fatal(err)
	}
	if err := ev.DelModels("extra"); err != nil {
		t.Fatal(err)
	}

	after, err := ev.Report()
	if err != nil {
		t.Fatal(err)
	}

	if len(after.ModelNames()) != len(before.ModelNames()) {
		t.Fatalf("model set changed after round trip: %v vs %v", after.ModelNames(), before.ModelNames())
	}
	for _, metric := range before.MetricNames() {
		v1, _ := before.Value("base", metric, PartitionTest)
		v2, _ := after.Value("base", metric, PartitionTest)
		if v1 != v2 {
			t.Errorf("metric %q changed after add/del round trip", metric)
		}
	}
}

func TestMetricRoundTrip(t *testing.T) {
	ds := makeBinaryDataset(t)
	ev, err := NewEvaluator(BinaryClassification, nil, ds, perfectClassifier(t, "clf"))
	if err != nil {
		t.Fatal(err)
	}

	before, err := ev.Report()
	if err != nil {
		t.Fatal(err)
	}

	custom := func(yTrue, yPred *mat.VecDense) (float64, error) {
		return 42, nil
	}
	if err := ev.AddMetrics([]string{"custom"}, []MetricFunc{custom}); err != nil {
		t.Fatal(err)
	}

	mid, err := ev.Report()
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := mid.Value("clf", "custom", PartitionTest); !ok || v != 42 {
		t.Errorf("custom metric = %v (present=%v), want 42", v, ok)
	}

	if err := ev.DelMetrics("custom"); err != nil {
		t.Fatal(err)
	}
	after, err := ev.Report()
	if err != nil {
		t.Fatal(err)
	}

	if len(after.MetricNames()) != len(before.MetricNames()) {
		t.Fatalf("metric set changed after round trip: %v vs %v", after.MetricNames(), before.MetricNames())
	}
	if _, ok := after.Value("clf", "custom", PartitionTest); ok {
		t.Error("deleted metric still present in report")
	}
}

func TestDelUnknownNameFails(t *testing.T) {
	ds := makeBinaryDataset(t)
	ev, err := NewEvaluator(BinaryClassification, nil, ds, perfectClassifier(t, "clf"))
	if err != nil {
		t.Fatal(err)
	}

	for _, del := range []func() error{
		func() error { return ev.DelModels("missing") },
		func() error { return ev.DelMetrics("missing") },
	} {
		err := del()
		if err == nil {
			t.Fatal("deleting an unknown name should fail")
		}
		var notFound *errors.NotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("error %v is not a NotFoundError", err)
		}
	}
}

func TestDuplicateNamesRejected(t *testing.T) {
	ds := makeBinaryDataset(t)
	ev, err := NewEvaluator(BinaryClassification, nil, ds, perfectClassifier(t, "clf"))
	if err != nil {
		t.Fatal(err)
	}

	if err := ev.AddModels(perfectClassifier(t, "clf")); err == nil {
		t.Error("duplicate model name should be rejected")
	}
	noop := func(yTrue, yPred *mat.VecDense) (float64, error) { return 0, nil }
	if err := ev.AddMetrics([]string{"accuracy"}, []MetricFunc{noop}); err == nil {
		t.Error("duplicate metric name should be rejected")
	}
}

func TestReportWithTrainingData(t *testing.T) {
	train := makeBinaryDataset(t)
	test := makeBinaryDataset(t)
	ev, err := NewEvaluator(BinaryClassification, train, test, perfectClassifier(t, "clf"))
	if err != nil {
		t.Fatal(err)
	}

	report, err := ev.Report(WithTrainingData())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Partitions()) != 2 {
		t.Fatalf("partitions = %v, want test and train", report.Partitions())
	}
	if _, ok := report.Value("clf", "accuracy", PartitionTrain); !ok {
		t.Error("train partition missing from report")
	}

	// Without a training partition the request fails.
	evNoTrain, err := NewEvaluator(BinaryClassification, nil, test, perfectClassifier(t, "clf"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := evNoTrain.Report(WithTrainingData()); err == nil {
		t.Error("Report(WithTrainingData()) should fail without a training partition")
	}
}

func TestFailingMetricFailsWholeReport(t *testing.T) {
	ds := makeBinaryDataset(t)
	ev, err := NewEvaluator(BinaryClassification, nil, ds, perfectClassifier(t, "clf"))
	if err != nil {
		t.Fatal(err)
	}

	panicking := func(yTrue, yPred *mat.VecDense) (float64, error) {
		panic("boom")
	}
	if err := ev.AddMetrics([]string{"panicking"}, []MetricFunc{panicking}); err != nil {
		t.Fatal(err)
	}

	if _, err := ev.Report(); err == nil {
		t.Error("report should fail as a whole when a metric fails")
	}
}

func TestWeightedCostFixture(t *testing.T) {
	// Confusion matrix: tn=50, fp=10, fn=5, tp=35.
	cm := mat.NewDense(2, 2, []float64{50, 10, 5, 35})

	tests := []struct {
		name    string
		weights CostWeights
		want    float64
	}{
		{
			name:    "unit error weights",
			weights: CostWeights{TN: 0, FP: 1, FN: 1, TP: 0},
			want:    15,
		},
		{
			name:    "cheap false negatives",
			weights: CostWeights{TN: 0, FP: 1, FN: 0.01, TP: 0},
			want:    10.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WeightedCost(cm, tt.weights)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("WeightedCost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCostPerModel(t *testing.T) {
	ds := makeBinaryDataset(t)
	ev, err := NewEvaluator(BinaryClassification, nil, ds, perfectClassifier(t, "perfect"))
	if err != nil {
		t.Fatal(err)
	}

	costs, err := ev.Cost(CostWeights{TN: 0, FP: 1, FN: 1, TP: 0})
	if err != nil {
		t.Fatal(err)
	}
	// A perfect classifier has no misclassification cost.
	if costs["perfect"] != 0 {
		t.Errorf("cost = %v, want 0", costs["perfect"])
	}
}

func TestCostUnsupportedForRegression(t *testing.T) {
	ds := makeRegressionDataset(t, 10)
	m, err := Wrap(&stubRegressor{value: 1}, "const", nil)
	if err != nil {
		t.Fatal(err)
	}
	ev, err := NewEvaluator(Regression, nil, ds, m)
	if err != nil {
		t.Fatal(err)
	}

	_, err = ev.Cost(CostWeights{FP: 1, FN: 1})
	if err == nil {
		t.Fatal("Cost should fail for regression tasks")
	}
	var unsupported *errors.UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Errorf("error %v is not an UnsupportedOperationError", err)
	}
}

func TestReportRegression(t *testing.T) {
	ds := makeRegressionDataset(t, 5) // targets 0,2,4,6,8
	m, err := Wrap(&stubRegressor{value: 4}, "const", nil)
	if err != nil {
		t.Fatal(err)
	}
	ev, err := NewEvaluator(Regression, nil, ds, m)
	if err != nil {
		t.Fatal(err)
	}

	report, err := ev.Report()
	if err != nil {
		t.Fatal(err)
	}

	// Predicting the mean: mse = (16+4+0+4+16)/5 = 8, r2 = 0.
	if mse, _ := report.Value("const", "mse", PartitionTest); math.Abs(mse-8) > 1e-10 {
		t.Errorf("mse = %v, want 8", mse)
	}
	if r2, _ := report.Value("const", "r2", PartitionTest); math.Abs(r2) > 1e-10 {
		t.Errorf("r2 = %v, want 0", r2)
	}
}
