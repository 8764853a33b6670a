package handler

import (
	"net/http"

	"github.com/evyataryagoni/geopage/internal/clientip"
	"github.com/evyataryagoni/geopage/internal/logger"
	"github.com/evyataryagoni/geopage/internal/metrics"
	"github.com/evyataryagoni/geopage/internal/pages"
	"github.com/evyataryagoni/geopage/internal/service"
	"github.com/go-chi/chi/v5/middleware"
)

// PageHandler serves the geo-targeted landing page.
// It deals with HTTP concerns only: address extraction and writing the page.
// The country decision lives in the service layer.
type PageHandler struct {
	service *service.GeoService
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewPageHandler creates a new page handler.
// m and log are optional.
func NewPageHandler(svc *service.GeoService, m *metrics.Metrics, log *logger.Logger) *PageHandler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &PageHandler{
		service: svc,
		metrics: m,
		logger:  log.WithComponent("PageHandler"),
	}
}

// AllowedMethods lists the methods served on the page route. HEAD is
// answered by the GET handler.
const AllowedMethods = "GET, HEAD, OPTIONS"

// Home handles GET /
//
// Always answers 200 with one of the two static pages: the target page when
// the client geolocates to the target country, the default page otherwise,
// including when the lookup fails.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	ip := clientip.FromRequest(r)

	h.logger.WithRequestID(middleware.GetReqID(r.Context())).WithIP(ip).
		Info().Msg("Client IP resolved")

	matched := h.service.IsTargetCountry(r.Context(), ip)
	body, variant := pages.Select(matched)

	if h.metrics != nil {
		h.metrics.PagesServedTotal.WithLabelValues(variant).Inc()
	}

	h.respondHTML(w, http.StatusOK, body)
}

// Options answers OPTIONS / with the methods the page route accepts
func (h *PageHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", AllowedMethods)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}

// respondHTML writes a static HTML body
func (h *PageHandler) respondHTML(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	if _, err := w.Write(body); err != nil {
		// Headers are already sent, all we can do is note it
		h.logger.Debug().Err(err).Msg("Failed to write response body")
	}
}
