package main

import (
	"errors"
	"path/filepath"
	"testing"

	"flightdelay/ml"
)

func writeServingState(t *testing.T) (modelPath, vocabPath string) {
	t.Helper()
	dir := t.TempDir()
	modelPath = filepath.Join(dir, "model.json")
	vocabPath = filepath.Join(dir, "vocabulary.json")

	vocab := &ml.Vocabulary{
		Columns:  []string{"TIPOVUELO_I", "MES_7"},
		Airlines: []string{"Grupo LATAM"},
	}
	model := ml.NewLogisticRegression(100, 0.5)
	if err := model.Train([][]float64{{1, 0}, {0, 1}, {1, 1}, {0, 0}}, []int{1, 0, 1, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := model.Save(modelPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := vocab.Save(vocabPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return modelPath, vocabPath
}

func TestLoadPredictor(t *testing.T) {
	modelPath, vocabPath := writeServingState(t)

	predictor, err := loadPredictor("logistic", modelPath, vocabPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if predictor.Vocabulary().Size() != 2 {
		t.Fatalf("expected 2 columns, got %d", predictor.Vocabulary().Size())
	}
}

func TestLoadPredictorMissingVocabularyIsFatal(t *testing.T) {
	modelPath, _ := writeServingState(t)

	predictor, err := loadPredictor("logistic", modelPath, filepath.Join(t.TempDir(), "missing.json"))
	if predictor != nil {
		t.Fatal("expected no predictor without the vocabulary the model was trained against")
	}
	if !errors.Is(err, ml.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestLoadPredictorMissingModel(t *testing.T) {
	_, vocabPath := writeServingState(t)

	if _, err := loadPredictor("logistic", filepath.Join(t.TempDir(), "missing.json"), vocabPath); !errors.Is(err, ml.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}
