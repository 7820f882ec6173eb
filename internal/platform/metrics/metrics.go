package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	grpcRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftboard_grpc_requests_total",
		Help: "Total number of gRPC requests",
	}, []string{"method", "code"})

	grpcRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shiftboard_grpc_request_duration_seconds",
		Help:    "Duration of gRPC requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "code"})

	vacationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftboard_vacation_decisions_total",
		Help: "Count of vacation request state transitions",
	}, []string{"status"})

	recurringShiftsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftboard_recurring_shifts_generated_total",
		Help: "Count of shifts generated from recurring rules",
	}, []string{"mode"})

	recurringShiftsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shiftboard_recurring_shifts_deleted_total",
		Help: "Count of recurring shifts deleted by overwrite runs",
	})

	shiftChangeDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftboard_shift_change_decisions_total",
		Help: "Count of shift change request decisions",
	}, []string{"status"})

	clockEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftboard_clock_events_total",
		Help: "Count of kiosk clock in and clock out events",
	}, []string{"kind"})

	candidateListSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shiftboard_shift_candidates",
		Help:    "Number of candidates returned per shift",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})
)

// ObserveGRPCRequest は gRPC リクエストの件数と所要時間を記録します。
func ObserveGRPCRequest(method, code string, duration time.Duration) {
	grpcRequestsTotal.WithLabelValues(method, code).Inc()
	grpcRequestDuration.WithLabelValues(method, code).Observe(duration.Seconds())
}

// ObserveVacationDecision は休暇申請の遷移先を記録します。
func ObserveVacationDecision(status string) {
	vacationDecisions.WithLabelValues(status).Inc()
}

// ObserveRecurringApply は繰り返しルール適用の生成件数と削除件数を記録します。
func ObserveRecurringApply(mode string, created, deleted int) {
	recurringShiftsGenerated.WithLabelValues(mode).Add(float64(created))
	recurringShiftsDeleted.Add(float64(deleted))
}

// ObserveShiftChangeDecision はシフト交代依頼の決定を記録します。
func ObserveShiftChangeDecision(status string, autoRejected int) {
	shiftChangeDecisions.WithLabelValues(status).Inc()
	if autoRejected > 0 {
		shiftChangeDecisions.WithLabelValues("AUTO_REJECTED").Add(float64(autoRejected))
	}
}

// ObserveClockEvent は出退勤の打刻を記録します。
func ObserveClockEvent(kind string) {
	clockEvents.WithLabelValues(kind).Inc()
}

// ObserveCandidates は候補者一覧の件数を記録します。
func ObserveCandidates(count int) {
	candidateListSize.Observe(float64(count))
}
