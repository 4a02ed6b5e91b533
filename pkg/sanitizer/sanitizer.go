package sanitizer

import (
	"context"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrymomot/lingo/internal"
)

var (
	strictPolicy *bluemonday.Policy
	safePolicy   *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		safePolicy = bluemonday.NewPolicy()
		safePolicy.AllowStandardURLs()
		safePolicy.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		safePolicy.AllowAttrs("href").OnElements("a")
		safePolicy.RequireNoFollowOnLinks(true)
	})
}

// Strict returns the policy that strips all markup and escapes the rest.
func Strict() *bluemonday.Policy {
	initPolicies()
	return strictPolicy
}

// Formatting returns the policy that keeps basic formatting tags and
// links with rel="nofollow".
func Formatting() *bluemonday.Policy {
	initPolicies()
	return safePolicy
}

// Middleware wraps a translation middleware so every text it yields is
// passed through policy. Use it for dictionaries edited by people who
// should not be able to inject markup. A nil policy means Strict.
//
// Texts reached through next are sanitized as well.
func Middleware(inner internal.Middleware, policy *bluemonday.Policy) internal.Middleware {
	if policy == nil {
		policy = Strict()
	}
	return func(ctx context.Context, locale, key string, next internal.Next) (string, bool, error) {
		text, ok, err := inner(ctx, locale, key, next)
		if err != nil || !ok {
			return text, ok, err
		}
		return policy.Sanitize(text), true, nil
	}
}
