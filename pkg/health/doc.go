// Package health provides liveness and readiness endpoints.
//
// Handlers are [middlewares.HandlerFunc] values, so the report message is
// translated like any other response:
//
//	r.Method(http.MethodGet, "/health/live", middlewares.Handle(svc, health.Live()))
//	r.Method(http.MethodGet, "/health/ready", middlewares.Handle(svc, health.Ready(health.Checks{
//	    "postgres": pool.Ping,
//	    "redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
//	})))
//
// Readiness answers 503 when any check fails.
package health
