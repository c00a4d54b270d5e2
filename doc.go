// Package modeleval provides a model evaluation and reporting toolkit for Go,
// designed for comparing fitted predictive models on held-out data.
//
// ModelEval offers a scikit-learn-like evaluation workflow: load a labeled
// dataset, split it into train/test partitions, fit one or more models,
// wrap them behind a uniform prediction interface, and build a metric
// report (model x metric x partition) with optional plot rendering.
//
// # Quick Start
//
// Here's a minimal regression evaluation:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/modeleval/dataset"
//	    "github.com/YuminosukeSato/modeleval/evaluate"
//	    "github.com/YuminosukeSato/modeleval/linear"
//	)
//
//	func main() {
//	    ds, err := dataset.FromCSV("housing.csv", "price")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    train, test, err := ds.Split(0.25, dataset.WithSeed(42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    lr := linear.NewLinearRegression()
//	    m, err := evaluate.Fit(lr, train)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    ev, err := evaluate.NewEvaluator(evaluate.Regression, train, test, m)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    report, err := ev.Report()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(report)
//	}
//
// # Packages
//
//   - dataset: CSV/in-memory datasets, seeded train/test splitting, k-fold
//   - linear: reference estimators (linear and logistic regression)
//   - metrics: regression and classification metrics on gonum vectors
//   - evaluate: model/metric registries, report building, cost analysis
//   - evaluate/plot: ROC, precision-recall, gain/lift, confusion matrix and
//     residual plots rendered with gonum/plot
package modeleval
