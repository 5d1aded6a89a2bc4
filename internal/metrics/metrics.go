package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitflow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ClassBookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitflow_class_bookings_total",
			Help: "Total number of class bookings by resulting status",
		},
		[]string{"status"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitflow_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	WaitlistPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitflow_waitlist_promotions_total",
			Help: "Total number of waitlisted bookings promoted to booked",
		},
	)

	MembershipTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitflow_membership_transitions_total",
			Help: "Total number of membership state transitions",
		},
		[]string{"transition"},
	)

	PaymentAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitflow_payment_attempts_total",
			Help: "Total number of payment charge attempts by outcome",
		},
		[]string{"outcome"},
	)

	PaymentEscalationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitflow_payment_escalations_total",
			Help: "Total number of payments escalated to failed with a protective freeze",
		},
	)

	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitflow_notifications_sent_total",
			Help: "Total number of notifications sent",
		},
		[]string{"channel", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitflow_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	ScheduledJobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitflow_scheduled_job_runs_total",
			Help: "Total number of scheduled job runs by result",
		},
		[]string{"job", "result"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status string) {
	ClassBookingsTotal.WithLabelValues(status).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordWaitlistPromotion() {
	WaitlistPromotionsTotal.Inc()
}

func RecordMembershipTransition(transition string) {
	MembershipTransitionsTotal.WithLabelValues(transition).Inc()
}

func RecordPaymentAttempt(outcome string) {
	PaymentAttemptsTotal.WithLabelValues(outcome).Inc()
}

func RecordPaymentEscalation() {
	PaymentEscalationsTotal.Inc()
}

func RecordNotification(channel, status string) {
	NotificationsSentTotal.WithLabelValues(channel, status).Inc()
}

func RecordJobRun(job, result string) {
	ScheduledJobRunsTotal.WithLabelValues(job, result).Inc()
}
