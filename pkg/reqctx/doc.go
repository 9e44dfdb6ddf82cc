// Package reqctx carries request-scoped data through context.Context:
// request metadata set by the HTTP middleware, verified token claims,
// and a logger enriched with the request id.
//
// Keys are unexported; use the With*/...FromContext pairs.
//
//	ctx = reqctx.WithRequestMeta(ctx, meta)
//	ctx = reqctx.WithClaims(ctx, claims)
//	reqctx.Logger(ctx).Info("appointment booked", "appointment_id", id)
//
// RequestMeta is set for every HTTP request. Claims are set only for
// authenticated requests.
package reqctx
