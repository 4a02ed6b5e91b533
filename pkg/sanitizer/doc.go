// Package sanitizer cleans translated texts with bluemonday policies
// before they reach a response.
//
//	svc, err := lingo.New(
//	    lingo.WithMiddleware(sanitizer.Middleware(cat.Middleware(lingo.MatchExact), sanitizer.Formatting())),
//	)
//
// Strict removes every tag; Formatting keeps paragraphs, emphasis, lists,
// code and links. Both escape HTML special characters in plain text.
package sanitizer
