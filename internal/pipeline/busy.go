package pipeline

import (
	"io"
	"net/http"
	"sync"
)

// Indicator is the global loading counter.
type Indicator interface {
	Show()
	Hide()
}

// Busy holds the indicator for the lifetime of each request: until the
// response body is closed or drained, or immediately on error or panic.
func Busy(ind Indicator) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (resp *http.Response, err error) {
			ind.Show()
			release := sync.OnceFunc(ind.Hide)
			handedOff := false
			defer func() {
				if !handedOff {
					release()
				}
			}()

			resp, err = next.RoundTrip(req)
			if err != nil || resp == nil || resp.Body == nil || resp.Body == http.NoBody {
				return resp, err
			}
			resp.Body = &releasingBody{ReadCloser: resp.Body, release: release}
			handedOff = true
			return resp, nil
		})
	}
}

type releasingBody struct {
	io.ReadCloser
	release func()
}

func (b *releasingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err == io.EOF {
		b.release()
	}
	return n, err
}

func (b *releasingBody) Close() error {
	defer b.release()
	return b.ReadCloser.Close()
}
