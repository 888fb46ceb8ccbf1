package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/formstate/pkg/domain"
)

// LoggingHooks logs every lifecycle event with the given logger.
// Applied transitions log at Debug, rejections at Warn and flag flips at Info.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition",
				"form", e.FormName,
				"action", e.Action,
				"changed", e.Diff != nil,
			)
		},
		OnRejected: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.WarnContext(ctx, "transition rejected",
				"form", e.FormName,
				"action", e.Action,
				"err", e.Err,
			)
		},
		OnFlagChange: func(ctx context.Context, e *domain.FlagEvent) {
			logger.InfoContext(ctx, "flag changed",
				"form", e.FormName,
				"flag", e.Flag,
				"value", e.Value,
			)
		},
	}
}

// Combine merges hook sets; each callback runs every non-nil callback in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks

	for _, h := range sets {
		if h.OnTransition != nil {
			prev, next := out.OnTransition, h.OnTransition
			out.OnTransition = func(ctx context.Context, e *domain.TransitionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnRejected != nil {
			prev, next := out.OnRejected, h.OnRejected
			out.OnRejected = func(ctx context.Context, e *domain.TransitionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnFlagChange != nil {
			prev, next := out.OnFlagChange, h.OnFlagChange
			out.OnFlagChange = func(ctx context.Context, e *domain.FlagEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
	}
	return out
}
