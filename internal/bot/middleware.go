package bot

import (
	"context"
	"strconv"
	"time"

	"github.com/sergei-li-tech/tgops/internal/metrics"
	"github.com/sergei-li-tech/tgops/internal/operr"
)

// Request is one inbound interaction: either a command message or a
// callback click. Handlers and middleware see the same shape for both.
type Request struct {
	UserID   int64
	ChatID   int64
	Command  string // command name, or the action kind for callbacks
	Args     string
	Callback bool
	// CallbackID and MessageID identify the message a callback edits.
	CallbackID string
	MessageID  int
	// Data is the raw callback token.
	Data string
}

// Handler processes one request.
type Handler func(ctx context.Context, req *Request) error

// Middleware wraps a handler with a cross-cutting stage.
type Middleware func(Handler) Handler

// Chain applies middleware so the first listed runs outermost.
func Chain(h Handler, mw ...Middleware) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Authorize rejects users outside the allow-list. Rejections are counted
// and reported through onReject; they are not handler errors.
func Authorize(allowed map[int64]bool, onReject func(req *Request)) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) error {
			if !allowed[req.UserID] {
				metrics.UnauthorizedTotal.WithLabelValues(strconv.FormatInt(req.UserID, 10)).Inc()
				if onReject != nil {
					onReject(req)
				}
				return nil
			}
			return next(ctx, req)
		}
	}
}

// Instrument counts requests, measures latency and records classified
// errors.
func Instrument() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) error {
			userID := strconv.FormatInt(req.UserID, 10)
			if req.Callback {
				metrics.CallbacksTotal.WithLabelValues(req.Command, userID).Inc()
			} else {
				metrics.CommandsTotal.WithLabelValues(req.Command, userID).Inc()
			}

			start := time.Now()
			err := next(ctx, req)
			metrics.CommandLatency.WithLabelValues(req.Command).Observe(time.Since(start).Seconds())

			if err != nil {
				kind := string(operr.KindOf(err))
				if kind == "" {
					kind = "internal"
				}
				metrics.ErrorsTotal.WithLabelValues(kind, req.Command).Inc()
			}
			return err
		}
	}
}
