package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "exaroton_console_http_requests_total",
	Help: "Requests served by the console client's metrics listener",
}, []string{"method", "path", "status"})
