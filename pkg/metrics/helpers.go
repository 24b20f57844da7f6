package metrics

import "time"

// ObserveDbQuery фиксирует длительность запроса к БД
// Вызывать через defer: defer metrics.ObserveDbQuery("select", "orders", time.Now())
func ObserveDbQuery(operation, table string, start time.Time) {
	DbQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// IncDbError инкрементирует счётчик ошибок БД
func IncDbError(operation string) {
	DbErrors.WithLabelValues(operation).Inc()
}
