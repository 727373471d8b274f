package ml

import (
	"math"
	"path/filepath"
	"testing"
)

func TestLogisticRegressionTrainPredict(t *testing.T) {
	features := [][]float64{
		{0, 0, 1},
		{0, 1, 1},
		{0, 0, 0},
		{0, 1, 0},
		{1, 0, 1},
		{1, 1, 1},
		{1, 0, 0},
		{1, 1, 0},
	}
	labels := []int{0, 0, 0, 0, 1, 1, 1, 1}

	model := NewLogisticRegression(500, 0.5)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	label, confidence, err := model.Predict([]float64{1, 0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
	if confidence <= 0.5 || confidence > 1 {
		t.Fatalf("unexpected confidence %v", confidence)
	}

	label, _, err = model.Predict([]float64{0, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
}

func TestLogisticRegressionPredictUntrained(t *testing.T) {
	model := &LogisticRegression{}
	if _, _, err := model.Predict([]float64{1}); err == nil {
		t.Fatal("expected error from untrained model")
	}
}

func TestLogisticRegressionSaveLoad(t *testing.T) {
	features := [][]float64{{0}, {0}, {1}, {1}}
	labels := []int{0, 0, 1, 1}

	model := NewLogisticRegression(300, 0.5)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "logreg.model")
	if err := model.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadModel("logistic", path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	wantLabel, wantConf, _ := model.Predict([]float64{1})
	gotLabel, gotConf, err := loaded.Predict([]float64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLabel != wantLabel || math.Abs(gotConf-wantConf) > 1e-9 {
		t.Fatalf("loaded model diverges: got (%d, %v), want (%d, %v)", gotLabel, gotConf, wantLabel, wantConf)
	}
}

func TestLoadModelUnsupportedType(t *testing.T) {
	if _, err := LoadModel("decision_tree", "nowhere"); err == nil {
		t.Fatal("expected error for unsupported model type")
	}
}

func TestClassWeights(t *testing.T) {
	weights := ClassWeights([]int{0, 0, 0, 1})
	if math.Abs(weights[1]-0.75) > 1e-9 {
		t.Fatalf("expected weight 0.75 for class 1, got %v", weights[1])
	}
	if math.Abs(weights[0]-0.25) > 1e-9 {
		t.Fatalf("expected weight 0.25 for class 0, got %v", weights[0])
	}
}
