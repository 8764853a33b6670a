package router

import (
	"net/http"

	"github.com/evyataryagoni/geopage/internal/handler"
	"github.com/evyataryagoni/geopage/internal/logger"
	"github.com/evyataryagoni/geopage/internal/metrics"
	custommiddleware "github.com/evyataryagoni/geopage/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates the public router: GET / and nothing else.
// HEAD / runs the GET handler and OPTIONS / lists the allowed methods.
//
// Parameters:
//   - pageHandler: the landing page handler
//   - m: metrics collector (optional, can be nil)
//   - log: structured logger
func SetupRouter(pageHandler *handler.PageHandler, m *metrics.Metrics, log *logger.Logger) chi.Router {
	r := chi.NewRouter()

	// RequestID must run before logging.
	// No middleware.RealIP: RemoteAddr has to stay the transport peer.
	r.Use(middleware.RequestID)
	r.Use(custommiddleware.LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(custommiddleware.MetricsMiddleware(m))
	}
	r.Use(middleware.GetHead)

	r.Get("/", pageHandler.Home)
	r.Options("/", pageHandler.Options)

	return r
}

// SetupAdminRouter creates the operational router served on ADMIN_ADDR
//
//   - GET /health  liveness probe
//   - GET /metrics Prometheus scrape endpoint for gatherer
func SetupAdminRouter(gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// healthCheckHandler returns 200 OK while the process is up
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
