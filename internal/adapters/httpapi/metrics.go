package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polyrec_http_requests_total",
		Help: "HTTP requests servidas, por ruta, método y status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polyrec_http_request_duration_seconds",
		Help:    "Duración de las requests HTTP por ruta.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// recordRequest registra una request terminada.
func recordRequest(route, method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// routeTemplate devuelve el path template de mux ({wallet} sin expandir)
// para mantener acotada la cardinalidad de los labels.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
