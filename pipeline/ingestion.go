// Package pipeline 负责航班数据集的摄取与清洗
package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"flightdelay/ml"
)

// IngestionConfig 数据摄取配置
type IngestionConfig struct {
	Path   string `json:"path"`
	Latin1 bool   `json:"latin1"`
}

// Ingester 从CSV文件读取原始航班记录
type Ingester struct {
	config IngestionConfig
}

// NewIngester 创建数据摄取器
func NewIngester(config IngestionConfig) *Ingester {
	return &Ingester{config: config}
}

// Load 读取并解析整个数据集
func (ing *Ingester) Load() ([]ml.FlightRecord, error) {
	if ing.config.Path == "" {
		return nil, errors.New("dataset path is required")
	}
	file, err := os.Open(ing.config.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reader io.Reader = file
	if ing.config.Latin1 {
		// 数据集导出为ISO-8859-1，航空公司名称带重音符号
		reader = transform.NewReader(file, charmap.ISO8859_1.NewDecoder())
	}
	return ParseCSV(reader)
}

// ParseCSV 解析航班数据集，按表头定位 Fecha-I、Fecha-O、OPERA、TIPOVUELO、MES 列
func ParseCSV(r io.Reader) ([]ml.FlightRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header failed: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Fecha-I", "OPERA", "TIPOVUELO", "MES"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %s", required)
		}
	}

	var records []ml.FlightRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row failed: %w", err)
		}

		record, err := parseRow(row, columns)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRow(row []string, columns map[string]int) (ml.FlightRecord, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	scheduled, err := time.Parse(ml.TimeLayout, field("Fecha-I"))
	if err != nil {
		return ml.FlightRecord{}, fmt.Errorf("bad Fecha-I %q: %w", field("Fecha-I"), err)
	}

	var actual time.Time
	if raw := field("Fecha-O"); raw != "" {
		if actual, err = time.Parse(ml.TimeLayout, raw); err != nil {
			return ml.FlightRecord{}, fmt.Errorf("bad Fecha-O %q: %w", raw, err)
		}
	}

	mes, err := strconv.Atoi(field("MES"))
	if err != nil {
		return ml.FlightRecord{}, fmt.Errorf("bad MES %q: %w", field("MES"), err)
	}

	return ml.FlightRecord{
		Opera:       field("OPERA"),
		TipoVuelo:   field("TIPOVUELO"),
		Mes:         mes,
		ScheduledAt: scheduled,
		ActualAt:    actual,
	}, nil
}
