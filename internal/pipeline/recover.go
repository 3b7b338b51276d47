package pipeline

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// Recover turns a panic further down the chain into an error.
func Recover(log *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (resp *http.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic",
						zap.Any("reason", r),
						zap.ByteString("stack", debug.Stack()),
						zap.String("path", req.URL.Path),
					)
					resp, err = nil, fmt.Errorf("pipeline: panic: %v", r)
				}
			}()
			return next.RoundTrip(req)
		})
	}
}
