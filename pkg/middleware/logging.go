package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Dias221467/Questline/pkg/logger"
	"github.com/Dias221467/Questline/pkg/metrics"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps websocket upgrades working behind the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

// LoggingMiddleware logs every request and records it in the HTTP metrics.
// Paths are the route templates so ids do not explode label cardinality.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		duration := time.Since(start)

		metrics.ReqCount.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		metrics.ReqDuration.WithLabelValues(r.Method, path).Observe(duration.Seconds())

		logger.Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     path,
			"status":   rec.status,
			"duration": duration.String(),
			"remote":   r.RemoteAddr,
		}).Info("http_request")
	})
}
