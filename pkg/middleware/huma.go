package middleware

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// HumaRateLimit returns a Huma middleware applying the same sliding window
// check as RateLimit. Errors are written through huma.WriteErr so they follow
// the API's error model. subject defaults to HumaClientIP when nil.
func HumaRateLimit(
	api huma.API,
	config Config,
	subject func(ctx huma.Context) string,
) (func(ctx huma.Context, next func(huma.Context)), error) {
	g, err := newGate(config)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		subject = HumaClientIP
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		d := g.check(ctx.Context(), subject(ctx), ctx.Method(), ctx.URL().Path)
		for k, v := range d.headers {
			ctx.SetHeader(k, v)
		}
		if d.status != http.StatusOK {
			_ = huma.WriteErr(api, ctx, d.status, d.message)
			return
		}
		next(ctx)
	}, nil
}

// HumaClientIP extracts the client IP from a Huma request, considering proxies.
func HumaClientIP(ctx huma.Context) string {
	return clientIP(ctx.Header, ctx.RemoteAddr())
}
