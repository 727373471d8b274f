package ml

import (
	"encoding/json"
	"errors"
	"math"
	"os"
)

type LogisticRegression struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`

	Epochs       int     `json:"-"`
	LearningRate float64 `json:"-"`
}

func NewLogisticRegression(epochs int, learningRate float64) *LogisticRegression {
	if epochs <= 0 {
		epochs = 200
	}
	if learningRate <= 0 {
		learningRate = 0.1
	}
	return &LogisticRegression{Epochs: epochs, LearningRate: learningRate}
}

func (lr *LogisticRegression) Train(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	width := len(features[0])
	for _, row := range features {
		if len(row) != width {
			return errors.New("inconsistent feature width")
		}
	}
	for _, label := range labels {
		if label != 0 && label != 1 {
			return errors.New("labels must be binary")
		}
	}
	if lr.Epochs <= 0 {
		lr.Epochs = 200
	}
	if lr.LearningRate <= 0 {
		lr.LearningRate = 0.1
	}

	classWeights := ClassWeights(labels)
	weights := make([]float64, width)
	bias := 0.0

	for epoch := 0; epoch < lr.Epochs; epoch++ {
		gradW := make([]float64, width)
		gradB := 0.0
		for i, row := range features {
			p := sigmoid(dot(weights, row) + bias)
			residual := (p - float64(labels[i])) * classWeights[labels[i]]
			for j, x := range row {
				gradW[j] += residual * x
			}
			gradB += residual
		}
		scale := lr.LearningRate / float64(len(features))
		for j := range weights {
			weights[j] -= scale * gradW[j]
		}
		bias -= scale * gradB
	}

	lr.Weights = weights
	lr.Bias = bias
	return nil
}

func (lr *LogisticRegression) Predict(features []float64) (int, float64, error) {
	if len(lr.Weights) == 0 {
		return 0, 0, errors.New("model not trained")
	}
	if len(features) != len(lr.Weights) {
		return 0, 0, errors.New("feature width mismatch")
	}
	p := sigmoid(dot(lr.Weights, features) + lr.Bias)
	if p > 0.5 {
		return 1, p, nil
	}
	return 0, 1 - p, nil
}

func (lr *LogisticRegression) Save(path string) error {
	if len(lr.Weights) == 0 {
		return errors.New("model not trained")
	}
	payload, err := json.Marshal(lr)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (lr *LogisticRegression) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded LogisticRegression
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Weights) == 0 {
		return errors.New("model file has no weights")
	}
	lr.Weights = loaded.Weights
	lr.Bias = loaded.Bias
	return nil
}

// weight[c] = count(!c) / total, counters label imbalance
func ClassWeights(labels []int) map[int]float64 {
	var positive int
	for _, label := range labels {
		if label == 1 {
			positive++
		}
	}
	total := float64(len(labels))
	negative := float64(len(labels) - positive)
	return map[int]float64{
		0: float64(positive) / total,
		1: negative / total,
	}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
