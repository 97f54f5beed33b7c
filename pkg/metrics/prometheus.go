package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// stateValues maps engine state names to the numeric gauge value.
var stateValues = map[string]float64{ //nolint:gochecknoglobals // fixed lookup table
	"idle":       0,
	"armed":      1,
	"escalating": 2,
	"resolved":   3,
}

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Escalation lifecycle
	alertsArmed        *prometheus.CounterVec
	alertsCancelled    *prometheus.CounterVec
	retriggersIgnored  prometheus.Counter
	escalations        prometheus.Counter
	countdownRemaining prometheus.Gauge
	engineState        prometheus.Gauge
	captures           *prometheus.CounterVec
	dials              *prometheus.CounterVec
	announcements      *prometheus.CounterVec

	// Riding and voice
	ridingActive     prometheus.Gauge
	telemetrySamples prometheus.Counter
	voiceListening   prometheus.Gauge
	voiceCommands    *prometheus.CounterVec

	// Event queue and dispatch loop
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueue           prometheus.Counter
	queueDequeue           prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	eventsDuplicate        prometheus.Counter
	eventProcessingLatency prometheus.Histogram

	// Collaborators
	deviceSessions prometheus.Gauge
	auditWrites    *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the global manager on a fresh registry with opts. Call it
// once at startup, before any metric is recorded or GetRegistry is served.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	customRegistry = registry
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ridershield",
		subsystem:        "escalation",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.alertsArmed = m.counterVec("alerts_armed_total", "Crash alerts armed, by severity", "severity")
	m.alertsCancelled = m.counterVec("alerts_cancelled_total", "Armed alerts cancelled, by source", "source")
	m.retriggersIgnored = m.counter("retriggers_ignored_total", "Trigger requests ignored because an alert was already armed")
	m.escalations = m.counter("escalations_total", "Countdowns that expired and escalated to contacts")
	m.countdownRemaining = m.gauge("countdown_remaining_seconds", "Seconds left on the armed countdown")
	m.engineState = m.gauge("engine_state", "Escalation state (0 idle, 1 armed, 2 escalating, 3 resolved)")
	m.captures = m.counterVec("evidence_captures_total", "Evidence capture control outcomes", "result")
	m.dials = m.counterVec("dials_total", "Dial actions dispatched, by origin and result", "origin", "result")
	m.announcements = m.counterVec("announcements_total", "Alert announcements, by sink and result", "sink", "result")

	m.ridingActive = m.gauge("riding_active", "1 while riding mode is latched on")
	m.telemetrySamples = m.counter("telemetry_samples_total", "Telemetry samples observed")
	m.voiceListening = m.gauge("voice_listening", "1 while continuous voice recognition is active")
	m.voiceCommands = m.counterVec("voice_commands_total", "Classified voice commands, by kind", "kind")

	m.queueSize = m.gauge("queue_size", "Current size of the event queue (backlog indicator)")
	m.queueCapacity = m.gauge("queue_capacity", "Configured capacity of the event queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueue = m.counter("queue_enqueued_total", "Events accepted by the queue")
	m.queueDequeue = m.counter("queue_dequeued_total", "Events handed to the dispatch loop")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Events rejected by the queue")
	m.eventsDuplicate = m.counter("events_duplicate_total", "Pushed events dropped as duplicates")
	m.eventProcessingLatency = m.histogram("event_processing_latency_milliseconds", "Time spent dispatching one event", m.histogramBuckets)

	m.deviceSessions = m.gauge("device_sessions", "Connected phone app websocket sessions")
	m.auditWrites = m.counterVec("audit_writes_total", "Episode audit writes, by result", "result")

	m.httpRequests = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "HTTP errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Escalation lifecycle.

// RecordAlertArmed counts an armed alert.
func RecordAlertArmed(severity string) {
	globalManager.alertsArmed.WithLabelValues(severity).Inc()
}

// RecordAlertCancelled counts a cancelled alert.
func RecordAlertCancelled(source string) {
	globalManager.alertsCancelled.WithLabelValues(source).Inc()
}

// RecordRetriggerIgnored counts a trigger that hit an already armed engine.
func RecordRetriggerIgnored() {
	globalManager.retriggersIgnored.Inc()
}

// RecordEscalation counts an expired countdown.
func RecordEscalation() {
	globalManager.escalations.Inc()
}

// UpdateCountdownRemaining sets the remaining countdown seconds.
func UpdateCountdownRemaining(seconds int) {
	globalManager.countdownRemaining.Set(float64(seconds))
}

// UpdateEngineState sets the engine state gauge from the state name.
func UpdateEngineState(state string) error {
	v, ok := stateValues[state]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownState, state)
	}
	globalManager.engineState.Set(v)
	return nil
}

// RecordCapture counts an evidence capture outcome (started, failed, stopped, rejected).
func RecordCapture(result string) {
	globalManager.captures.WithLabelValues(result).Inc()
}

// RecordDial counts a dial action.
func RecordDial(origin, result string) {
	globalManager.dials.WithLabelValues(origin, result).Inc()
}

// RecordAnnouncement counts an announcement delivery attempt.
func RecordAnnouncement(sink, result string) {
	globalManager.announcements.WithLabelValues(sink, result).Inc()
}

// Riding and voice.

// UpdateRiding sets the riding gauge.
func UpdateRiding(active bool) {
	globalManager.ridingActive.Set(boolToFloat(active))
}

// RecordTelemetrySample counts an observed sample.
func RecordTelemetrySample() {
	globalManager.telemetrySamples.Inc()
}

// UpdateVoiceListening sets the listening gauge.
func UpdateVoiceListening(active bool) {
	globalManager.voiceListening.Set(boolToFloat(active))
}

// RecordVoiceCommand counts a classified command.
func RecordVoiceCommand(kind string) {
	globalManager.voiceCommands.WithLabelValues(kind).Inc()
}

// Queue and dispatch loop.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an accepted event.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue counts a dispatched event.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError counts a rejected event.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordEventDuplicate increments the duplicate events counter.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordEventProcessingLatency records dispatch latency in milliseconds.
func RecordEventProcessingLatency(latencyMs float64) {
	globalManager.eventProcessingLatency.Observe(latencyMs)
}

// Collaborators.

// UpdateDeviceSessions sets the number of connected device sessions.
func UpdateDeviceSessions(count int) {
	globalManager.deviceSessions.Set(float64(count))
}

// RecordAuditWrite counts an audit store write.
func RecordAuditWrite(result string) {
	globalManager.auditWrites.WithLabelValues(result).Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
