// Package cookie remembers the locale a visitor picked.
//
// A [Preference] writes the choice to a cookie, optionally HMAC-signed,
// and exposes it as a resolver for a FirstOf chain:
//
//	prefs := cookie.New(cookie.WithSecret(os.Getenv("LOCALE_COOKIE_SECRET")))
//
//	svc, _ := lingo.New(
//	    lingo.WithLocales("en", "de"),
//	    lingo.WithResolver(lingo.FirstOf(
//	        lingo.QueryResolver("lang"),
//	        prefs.Resolver(),
//	        lingo.AcceptLanguageResolver("en", "de"),
//	    )),
//	)
//
// Tampered signed cookies are ignored by the resolver.
package cookie
