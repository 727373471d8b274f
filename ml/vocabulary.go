package ml

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
	"strings"
)

// column order fixes the feature-vector layout and must match between
// training and serving
type Vocabulary struct {
	Columns  []string `json:"columns"`
	Airlines []string `json:"airlines"`
}

func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Columns: []string{
			"OPERA_Latin American Wings",
			"MES_7",
			"MES_10",
			"OPERA_Grupo LATAM",
			"MES_12",
			"TIPOVUELO_I",
			"MES_4",
			"MES_11",
			"OPERA_Sky Airline",
			"OPERA_Copa Air",
		},
		Airlines: []string{
			"Aerolineas Argentinas",
			"Aeromexico",
			"Air Canada",
			"Air France",
			"Alitalia",
			"American Airlines",
			"Austral",
			"Avianca",
			"British Airways",
			"Copa Air",
			"Delta Air",
			"Gol Trans",
			"Grupo LATAM",
			"Iberia",
			"JetSmart SPA",
			"K.L.M.",
			"Lacsa",
			"Latin American Wings",
			"Oceanair Linhas Aereas",
			"Plus Ultra Lineas Aereas",
			"Qantas Airways",
			"Sky Airline",
			"United Airlines",
		},
	}
}

func (v *Vocabulary) Size() int {
	return len(v.Columns)
}

func (v *Vocabulary) Index(column string) (int, bool) {
	for i, c := range v.Columns {
		if c == column {
			return i, true
		}
	}
	return 0, false
}

func (v *Vocabulary) KnownAirline(name string) bool {
	for _, a := range v.Airlines {
		if a == name {
			return true
		}
	}
	return false
}

func (v *Vocabulary) Save(path string) error {
	if v.Size() == 0 {
		return errors.New("vocabulary is empty")
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func LoadVocabulary(path string) (*Vocabulary, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var vocab Vocabulary
	if err := json.Unmarshal(payload, &vocab); err != nil {
		return nil, err
	}
	if vocab.Size() == 0 {
		return nil, errors.New("vocabulary file has no columns")
	}
	return &vocab, nil
}

func FreezeVocabulary(records []FlightRecord, topN int) (*Vocabulary, error) {
	if len(records) == 0 {
		return nil, errors.New("no records to freeze vocabulary from")
	}
	if topN <= 0 {
		topN = 10
	}

	counts := make(map[string]int)
	airlines := make(map[string]struct{})
	for _, record := range records {
		for _, column := range DummyColumns(record) {
			counts[column]++
		}
		airlines[record.Opera] = struct{}{}
	}

	columns := make([]string, 0, len(counts))
	for column := range counts {
		columns = append(columns, column)
	}
	sort.Slice(columns, func(i, j int) bool {
		if counts[columns[i]] != counts[columns[j]] {
			return counts[columns[i]] > counts[columns[j]]
		}
		return columns[i] < columns[j]
	})
	if len(columns) > topN {
		columns = columns[:topN]
	}

	names := make([]string, 0, len(airlines))
	for name := range airlines {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return &Vocabulary{Columns: columns, Airlines: names}, nil
}
