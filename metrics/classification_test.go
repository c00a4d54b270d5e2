package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeleval/pkg/errors"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "all correct",
			yTrue: []float64{0, 1, 1, 0},
			yPred: []float64{0, 1, 1, 0},
			want:  1.0,
		},
		{
			name:  "half correct",
			yTrue: []float64{0, 1, 1, 0},
			yPred: []float64{0, 1, 0, 1},
			want:  0.5,
		},
		{
			name:  "multiclass",
			yTrue: []float64{0, 1, 2, 2},
			yPred: []float64{0, 2, 2, 2},
			want:  0.75,
		},
		{
			name:    "dimension mismatch",
			yTrue:   []float64{0, 1},
			yPred:   []float64{0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(
				mat.NewVecDense(len(tt.yTrue), tt.yTrue),
				mat.NewVecDense(len(tt.yPred), tt.yPred),
			)
			if (err != nil) != tt.wantErr {
				t.Errorf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrecisionRecallF1(t *testing.T) {
	// tp=2, fp=1, fn=1, tn=2
	yTrue := mat.NewVecDense(6, []float64{1, 1, 1, 0, 0, 0})
	yPred := mat.NewVecDense(6, []float64{1, 1, 0, 1, 0, 0})

	precision, err := Precision(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(precision-2.0/3.0) > 1e-10 {
		t.Errorf("Precision() = %v, want 2/3", precision)
	}

	recall, err := Recall(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(recall-2.0/3.0) > 1e-10 {
		t.Errorf("Recall() = %v, want 2/3", recall)
	}

	f1, err := F1Score(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f1-2.0/3.0) > 1e-10 {
		t.Errorf("F1Score() = %v, want 2/3", f1)
	}
}

func TestPrecisionUndefined(t *testing.T) {
	var warned error
	errors.SetWarningHandler(func(w error) { warned = w })
	defer errors.SetWarningHandler(func(error) {})

	// No predicted positives.
	yTrue := mat.NewVecDense(4, []float64{1, 0, 1, 0})
	yPred := mat.NewVecDense(4, []float64{0, 0, 0, 0})

	got, err := Precision(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("Precision() = %v, want 0 for undefined case", got)
	}
	var undef *errors.UndefinedMetricWarning
	if !errors.As(warned, &undef) {
		t.Errorf("expected UndefinedMetricWarning, got %v", warned)
	}
}

func TestLogLoss(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yScore  []float64
		want    float64
		wantErr bool
	}{
		{
			name:   "confident correct predictions",
			yTrue:  []float64{1, 0},
			yScore: []float64{0.9, 0.1},
			want:   -math.Log(0.9),
		},
		{
			name:   "uniform predictions",
			yTrue:  []float64{1, 0},
			yScore: []float64{0.5, 0.5},
			want:   -math.Log(0.5),
		},
		{
			name:    "non-binary labels",
			yTrue:   []float64{0, 2},
			yScore:  []float64{0.5, 0.5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LogLoss(
				mat.NewVecDense(len(tt.yTrue), tt.yTrue),
				mat.NewVecDense(len(tt.yScore), tt.yScore),
			)
			if (err != nil) != tt.wantErr {
				t.Errorf("LogLoss() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("LogLoss() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yScore  []float64
		want    float64
		wantErr bool
	}{
		{
			name:   "perfect classifier",
			yTrue:  []float64{0, 0, 0, 1, 1, 1},
			yScore: []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9},
			want:   1.0,
		},
		{
			name:   "worst classifier",
			yTrue:  []float64{0, 0, 0, 1, 1, 1},
			yScore: []float64{0.9, 0.8, 0.7, 0.3, 0.2, 0.1},
			want:   0.0,
		},
		{
			name:   "random classifier",
			yTrue:  []float64{0, 1, 0, 1},
			yScore: []float64{0.5, 0.5, 0.5, 0.5},
			want:   0.5,
		},
		{
			name:   "typical case",
			yTrue:  []float64{0, 0, 1, 1},
			yScore: []float64{0.1, 0.4, 0.35, 0.8},
			want:   0.75,
		},
		{
			name:   "all positive labels",
			yTrue:  []float64{1, 1, 1, 1},
			yScore: []float64{0.1, 0.4, 0.35, 0.8},
			want:   0.5, // Undefined case, returns 0.5
		},
		{
			name:    "non-binary labels",
			yTrue:   []float64{0, 0.5, 1},
			yScore:  []float64{0.1, 0.5, 0.9},
			wantErr: true,
		},
		{
			name:    "dimension mismatch",
			yTrue:   []float64{0, 1},
			yScore:  []float64{0.5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ROCAUC(
				mat.NewVecDense(len(tt.yTrue), tt.yTrue),
				mat.NewVecDense(len(tt.yScore), tt.yScore),
			)
			if (err != nil) != tt.wantErr {
				t.Errorf("ROCAUC() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("ROCAUC() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestROCCurve(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{0, 0, 1, 1})
	yScore := mat.NewVecDense(4, []float64{0.1, 0.4, 0.35, 0.8})

	points, err := ROCCurve(yTrue, yScore)
	if err != nil {
		t.Fatal(err)
	}

	// Starts at (0,0) and ends at (1,1).
	first, last := points[0], points[len(points)-1]
	if first.X != 0 || first.Y != 0 {
		t.Errorf("first point = (%v, %v), want (0, 0)", first.X, first.Y)
	}
	if last.X != 1 || last.Y != 1 {
		t.Errorf("last point = (%v, %v), want (1, 1)", last.X, last.Y)
	}

	// Monotone non-decreasing in both axes.
	for i := 1; i < len(points); i++ {
		if points[i].X < points[i-1].X || points[i].Y < points[i-1].Y {
			t.Errorf("ROC curve not monotone at point %d", i)
		}
	}
}

func TestROCCurveSingleClass(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 1, 1})
	yScore := mat.NewVecDense(3, []float64{0.2, 0.5, 0.9})
	if _, err := ROCCurve(yTrue, yScore); err == nil {
		t.Error("single-class input should fail")
	}
}

func TestPrecisionRecallCurveEndpoints(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{0, 0, 1, 1})
	yScore := mat.NewVecDense(4, []float64{0.1, 0.4, 0.35, 0.8})

	points, err := PrecisionRecallCurve(yTrue, yScore)
	if err != nil {
		t.Fatal(err)
	}
	last := points[len(points)-1]
	if last.X != 1 {
		t.Errorf("final recall = %v, want 1", last.X)
	}
	// Precision at full recall equals the positive rate.
	if math.Abs(last.Y-0.5) > 1e-10 {
		t.Errorf("final precision = %v, want 0.5", last.Y)
	}
}

func TestCumulativeGainAndLift(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 1, 0, 0})
	yScore := mat.NewVecDense(4, []float64{0.9, 0.8, 0.3, 0.2})

	gain, err := CumulativeGainCurve(yTrue, yScore)
	if err != nil {
		t.Fatal(err)
	}
	// Top half of the ranking captures all positives.
	mid := gain[2] // after 2 of 4 samples
	if math.Abs(mid.X-0.5) > 1e-10 || math.Abs(mid.Y-1.0) > 1e-10 {
		t.Errorf("gain at half = (%v, %v), want (0.5, 1.0)", mid.X, mid.Y)
	}

	lift, err := LiftCurve(yTrue, yScore)
	if err != nil {
		t.Fatal(err)
	}
	// Lift at the halfway point is 2x for a perfect ranking.
	if math.Abs(lift[1].Y-2.0) > 1e-10 {
		t.Errorf("lift at half = %v, want 2.0", lift[1].Y)
	}
	// Lift converges to 1 at full depth.
	if math.Abs(lift[len(lift)-1].Y-1.0) > 1e-10 {
		t.Errorf("lift at full depth = %v, want 1.0", lift[len(lift)-1].Y)
	}
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := mat.NewVecDense(6, []float64{0, 0, 1, 1, 2, 2})
	yPred := mat.NewVecDense(6, []float64{0, 1, 1, 1, 2, 0})

	cm, err := ConfusionMatrix(yTrue, yPred, []int{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}

	want := [][]float64{
		{1, 1, 0},
		{0, 2, 0},
		{1, 0, 1},
	}
	for i := range want {
		for j := range want[i] {
			if cm.At(i, j) != want[i][j] {
				t.Errorf("cm[%d][%d] = %v, want %v", i, j, cm.At(i, j), want[i][j])
			}
		}
	}

	// Labels outside the class set are rejected.
	if _, err := ConfusionMatrix(yTrue, yPred, []int{0, 1}); err == nil {
		t.Error("expected error for label outside class set")
	}
}
