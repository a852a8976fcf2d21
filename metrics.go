package stdoutchan

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// Lines drained and written per stream. Watch for: rate() for throughput.
	linesWrittenTotal *prometheus.CounterVec

	// Bytes written per stream, rendered line including the trailing newline.
	bytesWrittenTotal *prometheus.CounterVec

	// Write failures. A failure stops that stream's writer until Close.
	writeErrorsTotal *prometheus.CounterVec

	// Items waiting in the stream queue. Watch for: sustained growth = writer slower than senders.
	queueDepth *prometheus.GaugeVec

	// Sends dropped because the channel was already closed.
	sendsDroppedTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	linesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channelLinesWrittenTotal",
			Help: "Total number of lines written per channel and stream",
		},
		[]string{"channel", "stream"},
	)
	bytesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channelBytesWrittenTotal",
			Help: "Total bytes written per channel and stream, including newlines",
		},
		[]string{"channel", "stream"},
	)
	writeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channelWriteErrorsTotal",
			Help: "Total write failures; a failure stops the stream's writer",
		},
		[]string{"channel", "stream"},
	)
	queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "channelQueueDepth",
			Help: "Items currently queued and not yet written",
		},
		[]string{"channel", "stream"},
	)
	sendsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channelSendsDroppedTotal",
			Help: "Sends dropped because the channel was already closed",
		},
		[]string{"channel", "stream"},
	)

	registry.MustRegister(
		linesWrittenTotal, bytesWrittenTotal, writeErrorsTotal,
		queueDepth, sendsDroppedTotal,
	)
}

// MetricsHandler returns an http.Handler that serves channel and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
