// Package log defines standard attribute keys for model evaluation operations.
//
// Using these keys consistently across the library enables filtering of
// structured logs by model, metric, partition, or pipeline stage.
package log

// Model and Operation Context
// These attributes identify the model and the pipeline stage being performed.
const (
	// ModelNameKey identifies the model under evaluation.
	// Examples: "LinearRegression", "LogisticRegression"
	ModelNameKey = "model.name"

	// OperationKey specifies the pipeline operation being performed.
	// Standard values: "load", "split", "fit", "wrap", "report", "render", "cost"
	OperationKey = "eval.operation"

	// TaskKey indicates the task kind of the evaluator.
	// Values: "binary_classification", "multiclass_classification", "regression"
	TaskKey = "eval.task"

	// MetricKey identifies the metric being computed.
	// Examples: "accuracy", "rmse", "roc_auc"
	MetricKey = "eval.metric"

	// PartitionKey names the data partition a value was computed on.
	// Values: "train", "test"
	PartitionKey = "eval.partition"

	// PlotKindKey identifies the plot kind being rendered.
	// Examples: "roc", "confusion_matrix", "residuals"
	PlotKindKey = "eval.plot_kind"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// TargetKey names the target column of the dataset.
	TargetKey = "data.target"

	// SourceKey names the path or URI the dataset was loaded from.
	SourceKey = "data.source"

	// TestFractionKey records the requested held-out fraction of a split.
	TestFractionKey = "data.test_fraction"

	// SeedKey records the random seed used for a split or subsample.
	SeedKey = "data.seed"
)

// Performance Metrics
const (
	// DurationMsKey records the elapsed wall time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationsKey records the number of iterations an optimizer performed.
	IterationsKey = "perf.iterations"
)
