package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/dmitrymomot/lingo"
	"github.com/dmitrymomot/lingo/middlewares"
	"github.com/dmitrymomot/lingo/pkg/catalog"
	"github.com/dmitrymomot/lingo/pkg/message"
)

const maxRequestBody = 1 << 20

type localesView struct {
	Current   string   `json:"current"`
	Default   string   `json:"default"`
	Supported []string `json:"supported"`
}

func (a *app) listLocales(_ http.ResponseWriter, r *http.Request) (any, error) {
	return message.WithData(http.StatusOK, "#{locales.listed}", localesView{
		Current:   middlewares.GetLocale(r),
		Default:   a.svc.DefaultLocale(),
		Supported: a.svc.Locales().Tags(),
	}), nil
}

type localeInput struct {
	Locale string `json:"locale"`
}

// chooseLocale remembers the visitor's locale in a cookie.
func (a *app) chooseLocale(w http.ResponseWriter, r *http.Request) (any, error) {
	var in localeInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&in); err != nil {
		return nil, lingo.ErrBadRequest("#{errors.invalid_json}", lingo.WithError(err))
	}
	locale, ok := a.svc.Locales().Lookup(in.Locale)
	if !ok {
		return nil, lingo.ErrBadRequest("#{errors.unsupported_locale}", lingo.WithErrorCode("unsupported_locale"))
	}
	if err := a.prefs.Set(w, locale); err != nil {
		return nil, err
	}
	return message.WithData(http.StatusOK, "#{locales.saved}", localeInput{Locale: locale}), nil
}

func (a *app) forgetLocale(w http.ResponseWriter, _ *http.Request) (any, error) {
	a.prefs.Clear(w)
	return message.New(http.StatusOK, "#{locales.cleared}"), nil
}

type greetingView struct {
	Title string `json:"title"`
	Tip   string `json:"tip"`
}

func (a *app) greeting(http.ResponseWriter, *http.Request) (any, error) {
	return message.WithData(http.StatusOK, "#{greeting.hello}", greetingView{
		Title: "#{greeting.title}",
		Tip:   "#{greeting.tip}",
	}), nil
}

type product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	PriceCents  int64    `json:"priceCents"`
}

var products = []product{
	{ID: "apple", Name: "#{products.apple.name}", Description: "#{products.apple.description}", Tags: []string{"#{tags.fruit}"}, PriceCents: 120},
	{ID: "pear", Name: "#{products.pear.name}", Description: "#{products.pear.description}", Tags: []string{"#{tags.fruit}"}, PriceCents: 150},
	{ID: "bread", Name: "#{products.bread.name}", Description: "#{products.bread.description}", Tags: []string{"#{tags.bakery}", "#{tags.fresh}"}, PriceCents: 320},
}

func (a *app) listProducts(_ http.ResponseWriter, r *http.Request) (any, error) {
	page, err := intQuery(r, "page", 1)
	if err != nil || page < 1 {
		return nil, lingo.ErrBadRequest("#{errors.invalid_page}", lingo.WithErrorCode("invalid_page"))
	}
	perPage, err := intQuery(r, "per_page", 2)
	if err != nil || perPage < 1 || perPage > 100 {
		return nil, lingo.ErrBadRequest("#{errors.invalid_page}", lingo.WithErrorCode("invalid_page"))
	}

	from := min((page-1)*perPage, len(products))
	to := min(from+perPage, len(products))

	return message.Page(http.StatusOK, "#{products.listed}", products[from:to], len(products), message.PageSettings{
		PageCount:      page,
		RecordsPerPage: perPage,
	}), nil
}

func (a *app) getProduct(_ http.ResponseWriter, r *http.Request) (any, error) {
	id := chi.URLParam(r, "id")
	for _, p := range products {
		if p.ID == id {
			return message.WithData(http.StatusOK, "#{products.found}", p), nil
		}
	}
	return nil, message.New(http.StatusNotFound, "#{errors.product_not_found}").ToError()
}

type translatedText struct {
	Locale string `json:"locale"`
	Text   string `json:"text"`
}

// translateText translates ?text= with the request's locale context.
func (a *app) translateText(_ http.ResponseWriter, r *http.Request) (any, error) {
	lc := middlewares.GetLocaleContext(r)
	if lc == nil {
		return nil, lingo.ErrInternal("")
	}
	text, err := lc.TranslateString(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		return nil, err
	}
	return translatedText{Locale: lc.Locale, Text: text}, nil
}

// translatePayload echoes any JSON document; Handle translates it.
func (a *app) translatePayload(w http.ResponseWriter, r *http.Request) (any, error) {
	var body any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, lingo.ErrBadRequest("#{errors.invalid_json}", lingo.WithError(err))
	}
	return message.WithData(http.StatusOK, "#{translate.done}", body), nil
}

// status writes its JSON directly and relies on the Translate middleware.
func (a *app) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "#{status.ok}",
		"locale":  middlewares.GetLocale(r),
		"version": "1",
	})
}

func (a *app) reload(_ http.ResponseWriter, r *http.Request) (any, error) {
	if err := a.Reload(r.Context()); err != nil {
		return nil, lingo.ErrInternal("#{errors.reload_failed}", lingo.WithError(err))
	}
	return message.New(http.StatusOK, "#{translations.reloaded}"), nil
}

type translationInput struct {
	Text string `json:"text"`
}

func (a *app) putTranslation(w http.ResponseWriter, r *http.Request) (any, error) {
	var in translationInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&in); err != nil {
		return nil, lingo.ErrBadRequest("#{errors.invalid_json}", lingo.WithError(err))
	}

	locale, key := chi.URLParam(r, "locale"), chi.URLParam(r, "key")
	if err := a.store.Put(r.Context(), a.svc.ResolveExact(locale), key, in.Text); err != nil {
		return nil, storeError(err)
	}
	if err := a.cached.Invalidate(r.Context()); err != nil {
		return nil, err
	}
	return message.New(http.StatusOK, "#{translations.saved}"), nil
}

func (a *app) deleteTranslation(_ http.ResponseWriter, r *http.Request) (any, error) {
	locale, key := chi.URLParam(r, "locale"), chi.URLParam(r, "key")
	if err := a.store.Delete(r.Context(), a.svc.ResolveExact(locale), key); err != nil {
		return nil, storeError(err)
	}
	if err := a.cached.Invalidate(r.Context()); err != nil {
		return nil, err
	}
	return message.New(http.StatusOK, "#{translations.deleted}"), nil
}

func (a *app) listMissing(_ http.ResponseWriter, r *http.Request) (any, error) {
	limit, err := intQuery(r, "limit", 50)
	if err != nil || limit < 1 {
		return nil, lingo.ErrBadRequest("#{errors.invalid_limit}", lingo.WithErrorCode("invalid_limit"))
	}
	reports, err := a.misses.Top(r.Context(), limit)
	if err != nil {
		return nil, err
	}
	return message.WithData(http.StatusOK, "#{missing.listed}", reports), nil
}

func storeError(err error) error {
	if errors.Is(err, catalog.ErrEmptyLocale) || errors.Is(err, catalog.ErrEmptyKey) {
		return lingo.ErrBadRequest("#{errors.invalid_translation}", lingo.WithError(err))
	}
	return err
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
