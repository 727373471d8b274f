package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"flightdelay/ml"
)

// CleaningRule 清洗规则
type CleaningRule interface {
	Apply(record ml.FlightRecord) error
	Name() string
}

// QualityIssue 质量问题
type QualityIssue struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Opera     string    `json:"opera"`
}

// CleaningStats 清洗统计
type CleaningStats struct {
	TotalProcessed int64            `json:"total_processed"`
	Passed         int64            `json:"passed"`
	Rejected       int64            `json:"rejected"`
	Issues         map[string]int64 `json:"issues"`
	LastClean      time.Time        `json:"last_clean"`
}

// DataCleaner 数据清洗器
type DataCleaner struct {
	rules []CleaningRule

	stats     CleaningStats
	statsLock sync.RWMutex
}

// NewDataCleaner 创建带默认规则的数据清洗器
func NewDataCleaner() *DataCleaner {
	cleaner := &DataCleaner{
		stats: CleaningStats{Issues: make(map[string]int64)},
	}

	cleaner.AddRule(NewScheduleRule())
	cleaner.AddRule(NewMonthRule())
	cleaner.AddRule(NewFlightTypeRule())
	cleaner.AddRule(NewDuplicateRule())

	return cleaner
}

// AddRule 添加清洗规则
func (dc *DataCleaner) AddRule(rule CleaningRule) {
	dc.rules = append(dc.rules, rule)
}

// Clean 过滤非法记录，返回通过的记录与质量问题列表
func (dc *DataCleaner) Clean(records []ml.FlightRecord) ([]ml.FlightRecord, []QualityIssue) {
	cleaned := make([]ml.FlightRecord, 0, len(records))
	var issues []QualityIssue

	dc.statsLock.Lock()
	defer dc.statsLock.Unlock()

	for _, record := range records {
		dc.stats.TotalProcessed++

		rejected := false
		for _, rule := range dc.rules {
			if err := rule.Apply(record); err != nil {
				issues = append(issues, QualityIssue{
					Type:      rule.Name(),
					Message:   err.Error(),
					Timestamp: time.Now(),
					Opera:     record.Opera,
				})
				dc.stats.Issues[rule.Name()]++
				rejected = true
				break
			}
		}

		if rejected {
			dc.stats.Rejected++
			continue
		}
		dc.stats.Passed++
		cleaned = append(cleaned, record)
	}

	dc.stats.LastClean = time.Now()
	return cleaned, issues
}

// Stats 返回清洗统计快照
func (dc *DataCleaner) Stats() CleaningStats {
	dc.statsLock.RLock()
	defer dc.statsLock.RUnlock()

	snapshot := dc.stats
	snapshot.Issues = make(map[string]int64, len(dc.stats.Issues))
	for k, v := range dc.stats.Issues {
		snapshot.Issues[k] = v
	}
	return snapshot
}

type scheduleRule struct{}

// NewScheduleRule 校验计划起飞时间
func NewScheduleRule() CleaningRule { return &scheduleRule{} }

func (r *scheduleRule) Name() string { return "schedule_validation" }

func (r *scheduleRule) Apply(record ml.FlightRecord) error {
	if record.ScheduledAt.IsZero() {
		return errors.New("missing scheduled timestamp")
	}
	if !record.ActualAt.IsZero() {
		diff := ml.MinuteDiff(record.ScheduledAt, record.ActualAt)
		// 偏差超过两天的记录基本是录入错误
		if diff < -48*60 || diff > 48*60 {
			return fmt.Errorf("implausible departure slippage: %.0f minutes", diff)
		}
	}
	return nil
}

type monthRule struct{}

// NewMonthRule 校验月份与计划时间一致且在1-12范围内
func NewMonthRule() CleaningRule { return &monthRule{} }

func (r *monthRule) Name() string { return "month_validation" }

func (r *monthRule) Apply(record ml.FlightRecord) error {
	if record.Mes < 1 || record.Mes > 12 {
		return fmt.Errorf("month out of range: %d", record.Mes)
	}
	if !record.ScheduledAt.IsZero() && int(record.ScheduledAt.Month()) != record.Mes {
		return fmt.Errorf("month %d does not match schedule %s", record.Mes, record.ScheduledAt.Format(ml.TimeLayout))
	}
	return nil
}

type flightTypeRule struct{}

// NewFlightTypeRule 校验航班类型
func NewFlightTypeRule() CleaningRule { return &flightTypeRule{} }

func (r *flightTypeRule) Name() string { return "flight_type_validation" }

func (r *flightTypeRule) Apply(record ml.FlightRecord) error {
	if record.TipoVuelo != "N" && record.TipoVuelo != "I" {
		return fmt.Errorf("unknown flight type: %q", record.TipoVuelo)
	}
	if record.Opera == "" {
		return errors.New("missing airline")
	}
	return nil
}

type duplicateRule struct {
	seen map[string]struct{}
}

// NewDuplicateRule 去重：同一航空公司同一计划时刻视为重复
func NewDuplicateRule() CleaningRule {
	return &duplicateRule{seen: make(map[string]struct{})}
}

func (r *duplicateRule) Name() string { return "duplicate_detection" }

func (r *duplicateRule) Apply(record ml.FlightRecord) error {
	key := record.Opera + "|" + record.TipoVuelo + "|" + record.ScheduledAt.Format(ml.TimeLayout)
	if _, ok := r.seen[key]; ok {
		return errors.New("duplicate record")
	}
	r.seen[key] = struct{}{}
	return nil
}
