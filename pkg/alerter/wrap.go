package alerter

import (
	"context"
	"net/http"
	"runtime/debug"

	logx "github.com/mostafa-yasen/telegram-exception-alerts/pkg/logx"
)

// Wrap returns a function with fn's signature that reports fn's failures.
//
// A returned error is filtered, alerted, and then returned unchanged. If the
// alert itself cannot be delivered, the result is an *AlertError that still
// matches the original error through errors.Is/As. A panic is filtered,
// alerted, and re-panicked with the original value. A panic alert that cannot
// be delivered is only logged at error level through the Alerter's logger;
// the re-panic always carries the original value.
//
// A nil Alerter returns fn as-is.
func (a *Alerter) Wrap(fn func() error) func() error {
	if a == nil {
		return fn
	}
	id := Identify(fn)
	return func() error {
		ctx := context.Background()
		defer a.recoverAndAlert(ctx, id)
		return a.observe(ctx, id, fn())
	}
}

// WrapContext is Wrap for functions that take a context. Alerts are sent with
// the call's context values but without its cancellation, so a deadline that
// caused the failure does not also cancel its alert.
func (a *Alerter) WrapContext(fn func(context.Context) error) func(context.Context) error {
	if a == nil {
		return fn
	}
	id := Identify(fn)
	return func(ctx context.Context) error {
		actx := detach(ctx)
		defer a.recoverAndAlert(actx, id)
		return a.observe(actx, id, fn(ctx))
	}
}

// Do runs fn once under the alerter. It is the direct-application form of
// WrapContext for call sites that do not keep the wrapped function around.
func (a *Alerter) Do(ctx context.Context, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return a.WrapContext(fn)(ctx)
}

// DoAs is Do with an explicit identity, for closures whose symbol name would
// say nothing useful (a shell command, a job name).
func (a *Alerter) DoAs(ctx context.Context, id Identity, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if a == nil {
		return fn(ctx)
	}
	actx := detach(ctx)
	defer a.recoverAndAlert(actx, id)
	return a.observe(actx, id, fn(ctx))
}

// WrapFunc wraps a function that also returns a value. The value is passed
// through untouched on success and on failure.
func WrapFunc[T any](a *Alerter, fn func() (T, error)) func() (T, error) {
	if a == nil {
		return fn
	}
	id := Identify(fn)
	return func() (T, error) {
		ctx := context.Background()
		defer a.recoverAndAlert(ctx, id)
		v, err := fn()
		return v, a.observe(ctx, id, err)
	}
}

// WrapFunc1 wraps a one-argument function that returns a value.
func WrapFunc1[A, T any](a *Alerter, fn func(A) (T, error)) func(A) (T, error) {
	if a == nil {
		return fn
	}
	id := Identify(fn)
	return func(arg A) (T, error) {
		ctx := context.Background()
		defer a.recoverAndAlert(ctx, id)
		v, err := fn(arg)
		return v, a.observe(ctx, id, err)
	}
}

// Middleware reports panics escaping next and re-panics them so the server's
// own recovery still runs. http.ErrAbortHandler is never alerted.
func (a *Alerter) Middleware(next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	id := identifyHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer a.recoverAndAlert(detach(r.Context()), id)
		next.ServeHTTP(w, r)
	})
}

func detach(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}

// observe alerts on err when the policy allows it and returns what the
// wrapper must hand back to its caller.
func (a *Alerter) observe(ctx context.Context, id Identity, err error) error {
	if err == nil {
		return nil
	}
	if !a.policy.AllowKinds(Kinds(err)) {
		a.log.Debug("alert suppressed by policy", logx.String("kind", KindOf(err)), logx.String("func", id.String()))
		return err
	}
	al := newErrorAlert(err, id, errorTrace(err, 1))
	if derr := a.notify(ctx, al); derr != nil {
		return &AlertError{Err: err, Delivery: derr}
	}
	return err
}

// Recover reports a panic in progress as id and re-panics it. It must be
// deferred directly:
//
//	defer a.Recover(ctx, id)
//
// It is the building block for middlewares of other routers. A nil Alerter
// only re-panics.
func (a *Alerter) Recover(ctx context.Context, id Identity) {
	r := recover()
	if r == nil {
		return
	}
	if a == nil {
		panic(r)
	}
	a.alertPanic(detach(ctx), id, r)
}

// recoverAndAlert must be deferred directly by a wrapper.
func (a *Alerter) recoverAndAlert(ctx context.Context, id Identity) {
	r := recover()
	if r == nil {
		return
	}
	a.alertPanic(ctx, id, r)
}

func (a *Alerter) alertPanic(ctx context.Context, id Identity, r any) {
	if r == http.ErrAbortHandler {
		panic(r)
	}
	al := newPanicAlert(r, id, string(debug.Stack()))
	if !a.policy.AllowKinds(al.Kinds) {
		a.log.Debug("alert suppressed by policy", logx.String("kind", al.Kind), logx.String("func", id.String()))
		panic(r)
	}
	if err := a.notify(ctx, al); err != nil {
		a.log.Error("panic alert not delivered",
			logx.String("incident", al.ID),
			logx.String("func", id.String()),
			logx.Any("panic", r),
			logx.Err(err),
			logx.Stack(al.Traceback),
		)
	}
	panic(r)
}
