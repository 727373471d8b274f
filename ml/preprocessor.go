package ml

import (
	"errors"
)

type TrainingSet struct {
	Features [][]float64
	Labels   []int
}

type DataPreprocessor struct {
	vocab *Vocabulary
}

func NewDataPreprocessor(vocab *Vocabulary) *DataPreprocessor {
	return &DataPreprocessor{vocab: vocab}
}

// records without an actual departure carry no label and are skipped
func (p *DataPreprocessor) Build(records []FlightRecord) (*TrainingSet, error) {
	if p.vocab == nil || p.vocab.Size() == 0 {
		return nil, errors.New("vocabulary is required")
	}

	labeled := make([]FlightRecord, 0, len(records))
	labels := make([]int, 0, len(records))
	for _, record := range records {
		if record.ActualAt.IsZero() {
			continue
		}
		row, err := Engineer(record)
		if err != nil {
			return nil, err
		}
		labeled = append(labeled, record)
		labels = append(labels, row.Delayed)
	}
	if len(labeled) == 0 {
		return nil, errors.New("no labeled records")
	}

	vectors, err := Encode(labeled, p.vocab)
	if err != nil {
		return nil, err
	}
	return &TrainingSet{Features: vectors, Labels: labels}, nil
}
