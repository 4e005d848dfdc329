package service

import (
	"github.com/itchan-dev/parley/shared/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
	outcomeEmpty = "empty"
)

var (
	chatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_chat_requests_total",
			Help: "Chat submissions by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	chatPayloadParts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_chat_payload_parts_total",
			Help: "Content parts sent to the model by part type",
		},
		[]string{"type"},
	)

	chatStreamChunksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_chat_stream_chunks_total",
			Help: "Text chunks streamed back from the model",
		},
		[]string{"provider"},
	)

	chatStreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parley_chat_stream_duration_seconds",
			Help:    "Time from opening a model stream to closing it",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"provider"},
	)
)

func observePayload(payload domain.Payload) {
	for _, p := range payload {
		chatPayloadParts.WithLabelValues(string(p.Type)).Inc()
	}
}
