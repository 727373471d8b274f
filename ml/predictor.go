package ml

import (
	"errors"
	"fmt"
)

var ErrModelUnavailable = errors.New("no trained model available")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("value in column %s is incorrect: %s", e.Field, e.Reason)
}

// model and vocabulary are fixed at construction, safe for concurrent use
type Predictor struct {
	model Classifier
	vocab *Vocabulary
}

func NewPredictor(model Classifier, vocab *Vocabulary) (*Predictor, error) {
	if model == nil {
		return nil, ErrModelUnavailable
	}
	if vocab == nil || vocab.Size() == 0 {
		return nil, errors.New("vocabulary is required")
	}
	return &Predictor{model: model, vocab: vocab}, nil
}

func (p *Predictor) Vocabulary() *Vocabulary {
	return p.vocab
}

// checks run in a fixed order and stop at the first failure
func (p *Predictor) Validate(record FlightRecord) *ValidationError {
	if record.Mes < 1 || record.Mes > 12 {
		return &ValidationError{Field: "MES", Reason: "month must be between 1 and 12"}
	}
	if record.TipoVuelo != "N" && record.TipoVuelo != "I" {
		return &ValidationError{Field: "TIPOVUELO", Reason: "flight type must be N or I"}
	}
	if !p.vocab.KnownAirline(record.Opera) {
		return &ValidationError{Field: "OPERA", Reason: "unknown airline"}
	}
	return nil
}

// one invalid record aborts the whole batch, no partial results
func (p *Predictor) Predict(records []FlightRecord) ([]int, error) {
	for _, record := range records {
		if verr := p.Validate(record); verr != nil {
			return nil, verr
		}
	}

	vectors, err := Encode(records, p.vocab)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(vectors))
	for i, vector := range vectors {
		label, _, err := p.model.Predict(vector)
		if err != nil {
			return nil, err
		}
		labels[i] = label
	}
	return labels, nil
}
