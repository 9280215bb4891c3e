package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order creations",
	}, []string{"reason"})

	OrdersFulfilledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_fulfilled_total",
		Help: "Total number of orders marked paid by the fulfillment worker",
	})

	HwidRegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hwid_registrations_total",
		Help: "Total number of hardware id registrations",
	})

	LicenseActivationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "license_activations_total",
		Help: "Total number of successful license activations",
	})

	LicenseActivationsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "license_activations_rejected_total",
		Help: "Total number of rejected license activations",
	}, []string{"reason"})

	LicenseValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "license_validations_total",
		Help: "Total number of license validation checks by result",
	}, []string{"result"})

	SessionsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessions_issued_total",
		Help: "Total number of login sessions issued",
	})

	ProductCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_cache_hits_total",
		Help: "Total number of product lookups served from cache",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
