package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/attendance-client/internal/notify"
	"github.com/and161185/attendance-client/internal/router"
)

// FallbackMessage is shown when a failure carries no usable text.
const FallbackMessage = "Request failed"

const errorBodyLimit = 64 << 10

// identity endpoints never force a logout on 401.
var identityPaths = []string{"/auth/login", "/auth/register"}

// Sessions is the part of the session keeper the pipeline needs.
type Sessions interface {
	TokenSource
	Logout(ctx context.Context)
}

// Notifier shows a user-facing notice.
type Notifier interface {
	Show(text string, kind notify.Kind) notify.Message
}

// Navigator moves the client to another view.
type Navigator interface {
	Navigate(ctx context.Context, path string) (router.Location, error)
}

// Failures surfaces transport errors and HTTP statuses >= 400 as error
// notices. A 401 outside the identity endpoints also ends the session and
// navigates to the login view. The caller always gets the original
// response or error back.
func Failures(sess Sessions, notices Notifier, nav Navigator, log *zap.Logger) Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			ctx := req.Context()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
					return resp, err
				}
				notices.Show(transportMessage(err), notify.KindError)
				return resp, err
			}
			if resp.StatusCode < http.StatusBadRequest {
				return resp, nil
			}

			notices.Show(responseMessage(req, resp), notify.KindError)

			if resp.StatusCode == http.StatusUnauthorized && !isIdentity(req.URL.Path) {
				log.Info("credential rejected, ending session", zap.String("path", req.URL.Path))
				sess.Logout(ctx)
				if _, nerr := nav.Navigate(ctx, router.LoginPath); nerr != nil {
					log.Warn("navigate to login failed", zap.Error(nerr))
				}
			}
			return resp, nil
		})
	}
}

func isIdentity(path string) bool {
	for _, p := range identityPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

func transportMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackMessage
}

// responseMessage prefers the structured "message" field of the body. The
// consumed prefix is stitched back so the caller can still read the body.
func responseMessage(req *http.Request, resp *http.Response) string {
	fallback := FallbackMessage
	if resp.Status != "" {
		fallback = fmt.Sprintf("Http failure response for %s: %s", req.URL.Redacted(), resp.Status)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return fallback
	}
	buf, rerr := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	resp.Body = &rewoundBody{Reader: io.MultiReader(bytes.NewReader(buf), resp.Body), Closer: resp.Body}
	if rerr != nil {
		return fallback
	}
	var body struct {
		Message any `json:"message"`
	}
	if json.Unmarshal(buf, &body) == nil {
		if s, ok := body.Message.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return fallback
}

type rewoundBody struct {
	io.Reader
	io.Closer
}
