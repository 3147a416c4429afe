// Package callctx carries per-call advice state in the leading
// context.Context argument of an intercepted call.
//
// Values are keyed to the call's argument buffer, so a nested intercepted
// call made with the rewritten context never sees the outer call's values
// and an after-hook only finds what the same call's before-hook stored.
package callctx

import (
	"context"

	"github.com/alexisbeaulieu97/advisor/pkg/advice"
)

type slot struct {
	owner *any
	key   any
}

// Context returns the call's leading context argument.
func Context(args advice.Args) (context.Context, bool) {
	if len(args) == 0 {
		return nil, false
	}
	ctx, ok := args[0].(context.Context)
	return ctx, ok && ctx != nil
}

// Replace swaps the call's leading context for ctx. It reports false when
// the call has no leading context.
func Replace(args advice.Args, ctx context.Context) bool {
	if _, ok := Context(args); !ok || ctx == nil {
		return false
	}
	args[0] = ctx
	return true
}

// Attach stores value for this call under key, rewriting the leading
// context. key must be comparable.
func Attach(args advice.Args, key, value any) bool {
	ctx, ok := Context(args)
	if !ok {
		return false
	}
	args[0] = context.WithValue(ctx, slot{owner: &args[0], key: key}, value)
	return true
}

// Lookup returns the value Attach stored for this call under key.
func Lookup(args advice.Args, key any) (any, bool) {
	ctx, ok := Context(args)
	if !ok {
		return nil, false
	}
	v := ctx.Value(slot{owner: &args[0], key: key})
	return v, v != nil
}
