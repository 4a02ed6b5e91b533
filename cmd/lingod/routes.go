package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/lingo"
	"github.com/dmitrymomot/lingo/middlewares"
	"github.com/dmitrymomot/lingo/pkg/health"
)

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middlewares.Recover(middlewares.WithRecoverLogger(a.log)),
		middlewares.RequestID(),
		middlewares.I18n(a.svc,
			middlewares.WithI18nLogger(a.log),
			middlewares.WithContentLanguage(),
		),
	)

	handle := func(fn middlewares.HandlerFunc) http.Handler {
		return middlewares.Handle(a.svc, fn, middlewares.WithHandleLogger(a.log))
	}

	r.NotFound(handle(func(http.ResponseWriter, *http.Request) (any, error) {
		return nil, lingo.ErrNotFound("#{errors.route_not_found}")
	}).ServeHTTP)
	r.MethodNotAllowed(handle(func(http.ResponseWriter, *http.Request) (any, error) {
		return nil, lingo.NewHTTPError(http.StatusMethodNotAllowed, "#{errors.method_not_allowed}")
	}).ServeHTTP)

	r.Method(http.MethodGet, "/health/live", handle(health.Live()))
	r.Method(http.MethodGet, "/health/ready", handle(health.Ready(a.checks, health.WithLogger(a.log))))

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/locales", handle(a.listLocales))
		r.Method(http.MethodPut, "/locale", handle(a.chooseLocale))
		r.Method(http.MethodDelete, "/locale", handle(a.forgetLocale))
		r.Method(http.MethodGet, "/greeting", handle(a.greeting))
		r.Method(http.MethodGet, "/products", handle(a.listProducts))
		r.Method(http.MethodGet, "/products/{id}", handle(a.getProduct))
		r.Method(http.MethodGet, "/translate", handle(a.translateText))
		r.Method(http.MethodPost, "/translate", handle(a.translatePayload))
		r.Method(http.MethodPost, "/reload", handle(a.reload))

		// Plain handlers writing JSON themselves are translated on the way out.
		r.With(middlewares.Translate(a.svc,
			middlewares.WithTranslateLogger(a.log),
			middlewares.WithTranslateMaxBody(a.cfg.MaxBody),
		)).Get("/status", a.status)

		if a.store != nil {
			r.Method(http.MethodPut, "/translations/{locale}/{key}", handle(a.putTranslation))
			r.Method(http.MethodDelete, "/translations/{locale}/{key}", handle(a.deleteTranslation))
		}
		if a.misses != nil {
			r.Method(http.MethodGet, "/missing", handle(a.listMissing))
		}
	})

	return r
}
