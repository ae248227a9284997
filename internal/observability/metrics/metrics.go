package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	PanelQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_queries_total",
			Help: "Total number of panel queries by variant.",
		},
		[]string{"service", "query", "result"},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"service", "result"},
	)

	RpcExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_rpc_executions_total",
			Help: "Total number of RPC method executions.",
		},
		[]string{"service", "rpc_method", "result"},
	)

	ChunkUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_chunk_uploads_total",
			Help: "Total number of CDN chunk uploads.",
		},
		[]string{"service", "result"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(prometheus.Labels{"service": serviceName}).(*prometheus.HistogramVec)
	PanelQueriesTotal = PanelQueriesTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	LoginsTotal = LoginsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	RpcExecutionsTotal = RpcExecutionsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	ChunkUploadsTotal = ChunkUploadsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		PanelQueriesTotal,
		LoginsTotal,
		RpcExecutionsTotal,
		ChunkUploadsTotal,
	)
}
