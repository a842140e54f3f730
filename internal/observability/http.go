package observability

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Middleware adds a request scoped Logger to each HTTP request it wraps.
type Middleware struct {
	// TraceIdHeader names the request header that carries a caller trace id.
	// A fresh uuid is used when it is empty or missing.
	TraceIdHeader string

	// Device labels the token served by the wrapped handler.
	Device string
}

// Wrap returns an Handler that add Observability to http Request Context and call next.
func (self Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()

		var tId string
		if "" != self.TraceIdHeader {
			tId = r.Header.Get(self.TraceIdHeader)
		}
		if "" == tId {
			tId = uuid.New().String()
		}

		log := GetObservability(r.Context()).Log().With("tId", tId)
		if "" != self.Device {
			log = log.With("device", self.Device)
		}
		ctx := WithLogger(r.Context(), log)
		sw := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&sw, r.WithContext(ctx))
		log.Info(
			"processed HTTP request",
			"method", r.Method,
			"uri", r.RequestURI,
			"status", sw.status,
			"size", sw.size,
			"duration", time.Since(t0),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (self *statusRecorder) WriteHeader(statusCode int) {
	self.status = statusCode
	self.ResponseWriter.WriteHeader(statusCode)
}

func (self *statusRecorder) Write(data []byte) (int, error) {
	n, err := self.ResponseWriter.Write(data)
	self.size += n
	return n, err
}

var _ http.ResponseWriter = &statusRecorder{}
