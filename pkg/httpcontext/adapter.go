// Package httpcontext bridges fasthttp's request context and the stdlib
// context.Context the repositories and usecases expect.
package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/homeboard/backend/pkg/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	userIDHeader    = "X-User-ID"
)

// Adapter derives a deadline-bound context.Context from a fasthttp request,
// tagging it with the request id and the authenticated actor so downstream
// logs can be correlated.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach returns a context that expires after the adapter's timeout. The
// request id is echoed back on the response so clients can reference it.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	id := requestID(ctx)
	ctx.Response.Header.Set(requestIDHeader, id)
	stdCtx = logger.ContextWithRequestID(stdCtx, id)

	if actor := string(ctx.Request.Header.Peek(userIDHeader)); actor != "" {
		stdCtx = logger.ContextWithActor(stdCtx, actor)
	}

	return stdCtx, cancel
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if ctx != nil {
		if id := strings.TrimSpace(string(ctx.Request.Header.Peek(requestIDHeader))); id != "" {
			return id
		}
	}
	return uuid.NewString()
}
