package monitoring

import (
	"sync/atomic"
	"time"
)

// Collector 服务指标收集器
type Collector struct {
	startTime time.Time

	requestsTotal      int64
	predictionsServed  int64
	validationRejected int64
	cacheHits          int64
}

// NewCollector 创建指标收集器
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// IncRequests 记录一次请求
func (c *Collector) IncRequests() {
	atomic.AddInt64(&c.requestsTotal, 1)
}

// AddPredictions 记录已返回的预测数量
func (c *Collector) AddPredictions(n int) {
	atomic.AddInt64(&c.predictionsServed, int64(n))
}

// IncRejected 记录一次校验失败
func (c *Collector) IncRejected() {
	atomic.AddInt64(&c.validationRejected, 1)
}

// IncCacheHits 记录一次缓存命中
func (c *Collector) IncCacheHits() {
	atomic.AddInt64(&c.cacheHits, 1)
}

// Snapshot 导出当前指标
func (c *Collector) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"requests_total":      atomic.LoadInt64(&c.requestsTotal),
		"predictions_served":  atomic.LoadInt64(&c.predictionsServed),
		"validation_rejected": atomic.LoadInt64(&c.validationRejected),
		"cache_hits":          atomic.LoadInt64(&c.cacheHits),
		"uptime_seconds":      int64(time.Since(c.startTime).Seconds()),
	}
}
