package errors

import (
	"strings"
	"testing"
)

func TestDataAccessError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "with cause",
			err:  NewDataAccessError("data/train.csv", "cannot open file", New("no such file")),
			want: []string{"data/train.csv", "cannot open file", "no such file"},
		},
		{
			name: "without cause",
			err:  NewDataAccessError("s3://bucket/data.csv", "target column 'label' not found", nil),
			want: []string{"s3://bucket/data.csv", "target column 'label' not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(msg, want) {
					t.Errorf("error message %q does not contain %q", msg, want)
				}
			}
			var accessErr *DataAccessError
			if !As(tt.err, &accessErr) {
				t.Errorf("As() failed to extract *DataAccessError from %v", tt.err)
			}
		})
	}
}

func TestInvalidParameterError(t *testing.T) {
	err := NewInvalidParameterError("Split", "testFraction", "must be in (0, 1)", 1.5)

	msg := err.Error()
	for _, want := range []string{"Split", "testFraction", "must be in (0, 1)", "1.5"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q does not contain %q", msg, want)
		}
	}

	var paramErr *InvalidParameterError
	if !As(err, &paramErr) {
		t.Fatalf("As() failed to extract *InvalidParameterError")
	}
	if paramErr.ParamName != "testFraction" {
		t.Errorf("ParamName = %q, want %q", paramErr.ParamName, "testFraction")
	}
}

func TestTrainingErrorUnwrap(t *testing.T) {
	cause := NewConvergenceWarning("LogisticRegression", 100, "")
	err := NewTrainingError("LogisticRegression", cause)

	var convErr *ConvergenceWarning
	if !As(err, &convErr) {
		t.Fatalf("As() failed to unwrap ConvergenceWarning from TrainingError")
	}
	if convErr.Iterations != 100 {
		t.Errorf("Iterations = %d, want 100", convErr.Iterations)
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		kind string
		id   string
	}{
		{name: "model", kind: "model", id: "RandomForest"},
		{name: "metric", kind: "metric", id: "my_metric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNotFoundError(tt.kind, tt.id)
			if !strings.Contains(err.Error(), tt.id) {
				t.Errorf("error message %q does not contain %q", err.Error(), tt.id)
			}
			var notFound *NotFoundError
			if !As(err, &notFound) {
				t.Fatalf("As() failed to extract *NotFoundError")
			}
			if notFound.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", notFound.Kind, tt.kind)
			}
		})
	}
}

func TestUnsupportedOperationError(t *testing.T) {
	err := NewUnsupportedOperationError("Cost", "regression")
	msg := err.Error()
	if !strings.Contains(msg, "Cost") || !strings.Contains(msg, "regression") {
		t.Errorf("unexpected error message: %q", msg)
	}
}

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("LinearRegression", "Predict")
	msg := err.Error()
	if !strings.Contains(msg, "LinearRegression") || !strings.Contains(msg, "Predict") {
		t.Errorf("unexpected error message: %q", msg)
	}
}

func TestWarningHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) {
		captured = w
	})
	defer SetWarningHandler(nil)

	warning := NewUndefinedMetricWarning("precision", "no predicted positives", 0.0)
	Warn(warning)

	if captured == nil {
		t.Fatal("warning handler was not invoked")
	}
	var undef *UndefinedMetricWarning
	if !As(captured, &undef) {
		t.Fatalf("captured warning is not *UndefinedMetricWarning: %v", captured)
	}
	if undef.Metric != "precision" {
		t.Errorf("Metric = %q, want %q", undef.Metric, "precision")
	}
}
