package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"github.com/valyala/fasthttprouter"
)

var (
	viewsCounted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "folio",
		Name:      "views_counted_total",
		Help:      "Page views recorded.",
	})

	flushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Name:      "views_flushes_total",
		Help:      "View count flushes to the store by result.",
	}, []string{"result"})

	viewsFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Name:      "views_fetches_total",
		Help:      "Fetches of the remote views map by result.",
	}, []string{"result"})

	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})
)

var metricsHandler = fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())

func (a *Api) Metrics(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
	metricsHandler(ctx)
}
