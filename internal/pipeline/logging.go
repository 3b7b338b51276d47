package pipeline

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Logging logs one line per request. Only metadata is logged, never headers or bodies.
func Logging(log *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Duration("dur", time.Since(start)),
				zap.String("request_id", req.Header.Get(RequestIDHeader)),
			}
			if err != nil {
				log.Warn("http", append(fields, zap.Error(err))...)
				return resp, err
			}
			log.Info("http", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}
