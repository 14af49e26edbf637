package router

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fulfillment-engine/internal/endpoints"
	"fulfillment-engine/internal/metrics"
	"fulfillment-engine/internal/pipeline"
	"fulfillment-engine/internal/reader"
	"fulfillment-engine/internal/util"
)

// ServiceKeyHeader authenticates operator calls to the protected endpoints.
const ServiceKeyHeader = "X-Service-Key"

// Deps bundles everything the routes need.
type Deps struct {
	Pipeline      *pipeline.Pipeline
	Reader        *reader.Reader
	Logger        *util.ServiceLogger
	ServiceKey    string
	WebhookSecret string
}

func NewRouter(deps Deps) *mux.Router {
	r := mux.NewRouter()

	addRoutes(r, deps)

	r.Use(loggingMiddleware(deps.Logger))

	return r
}

func addRoutes(r *mux.Router, deps Deps) {

	fulfillmentHandler := &endpoints.Fulfillment{}
	fulfillmentHandler.Init(deps.Pipeline, deps.Logger)

	metricsHandler := &endpoints.Metrics{}
	metricsHandler.Init(deps.Reader, deps.Logger)

	webhookHandler := &endpoints.Webhook{}
	webhookHandler.Init(deps.Pipeline, deps.WebhookSecret, deps.Logger)

	r.HandleFunc("/api/status",
		instrumentHandler("status", endpoints.StatusHandler)).Methods("GET")
	r.HandleFunc("/api/metrics",
		instrumentHandler("metrics", serviceKeyAuth(deps.ServiceKey, metricsHandler.GetMetricsHandler))).Methods("GET")
	r.HandleFunc("/fulfillment/run",
		instrumentHandler("fulfillment", serviceKeyAuth(deps.ServiceKey, fulfillmentHandler.RunFulfillmentHandler))).Methods("POST")
	r.HandleFunc("/webhook",
		instrumentHandler("webhook", webhookHandler.WebhookHandler)).Methods("POST")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func Run(addr string, deps Deps) {
	appRouter := NewRouter(deps)

	server := NewServer(addr, appRouter)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		println()
		log.Println("Shutting down server...")

		err := gracefulShutdown(server, 25*time.Second)

		if err != nil {
			log.Printf("Server stopped with error: %s", err.Error())
		} else {
			log.Println("Server stopped gracefully.")
		}

		os.Exit(0)
	}()

	log.Printf("Listening on %s", server.Addr)
	log.Fatal(server.ListenAndServe())
}

func gracefulShutdown(server *http.Server, maximumTime time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), maximumTime)
	defer cancel()

	return server.Shutdown(ctx)
}

func loggingMiddleware(logger *util.ServiceLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.LogEvent(util.LOG_LEVEL_INFO, fmt.Sprintf("Request: %s %s", r.Method, r.RequestURI))
			next.ServeHTTP(w, r)
		})
	}
}

// serviceKeyAuth rejects the request before the pipeline runs, so failed
// auth never shows up in the fulfillment log.
func serviceKeyAuth(serviceKey string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get(ServiceKeyHeader)
		if serviceKey == "" ||
			subtle.ConstantTimeCompare([]byte(provided), []byte(serviceKey)) != 1 {
			var resp endpoints.APIResponse
			resp.WriteErrorResponseWithStatusCode(w, endpoints.ErrUnauthorized, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// instrumentHandler wraps an HTTP handler with Prometheus instrumentation
func instrumentHandler(handlerName string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(wrapped, r)

		duration := time.Since(startTime).Seconds()
		metrics.HTTPRequestDuration.WithLabelValues(handlerName, r.Method).Observe(duration)
		metrics.HTTPRequestsTotal.WithLabelValues(handlerName, r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
