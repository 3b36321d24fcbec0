package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exaroton_console_frames_total",
		Help: "Inbound console frames grouped by decoded type and outcome",
	}, []string{"type", "outcome"})

	envelopesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exaroton_console_envelopes_sent_total",
		Help: "Outbound console envelopes grouped by type and status",
	}, []string{"type", "status"})

	linesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exaroton_console_lines_published_total",
		Help: "Console lines mirrored to the line publisher grouped by status",
	}, []string{"status"})
)

// Frame outcomes.
const (
	OutcomeDispatched = "dispatched"
	OutcomeSuppressed = "suppressed"
	OutcomeMalformed  = "malformed"
)

// ObserveFrame records an inbound frame. msgType may be empty when the frame
// was not decoded.
func ObserveFrame(msgType, outcome string) {
	if msgType == "" {
		msgType = "unknown"
	}
	framesTotal.WithLabelValues(msgType, outcome).Inc()
}

// ObserveEnvelope records an outbound envelope write.
func ObserveEnvelope(envType string, err error) {
	envelopesTotal.WithLabelValues(envType, status(err)).Inc()
}

// ObservePublish records a mirrored console line.
func ObservePublish(err error) {
	linesPublished.WithLabelValues(status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
