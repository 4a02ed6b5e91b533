package internal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lingo/internal"
)

func testDictionary() internal.Dictionary {
	return internal.Dictionary{
		"en": {
			"ok":                        "success",
			"hello":                     "hello",
			"blue sky with {{ ocean }}": "blue sky with ocean",
			`{"a":1,"b":{"c":2}}`:       "json object",
			"bad":                       "bad request",
			"empty":                     "",
			"thingOnlyInEn":             "This key is only in en locale",
		},
		"zh-Hans": {
			"ok":                        "成功",
			"hello":                     "你好",
			"blue sky with {{ ocean }}": "蓝天和大海",
			`{"a":1,"b":{"c":2}}`:       "JSON 对象",
			"bad":                       "错误请求",
			"empty":                     "",
		},
		"zh": {
			"ok":            "成功(zh)",
			"thingOnlyInZh": "此键仅在 zh 语言中存在",
		},
	}
}

func newTestService(t *testing.T, opts ...internal.Option) *internal.Service {
	t.Helper()

	base := []internal.Option{
		internal.WithLocales("en", "zh", "zh-Hans"),
		internal.WithDefaultLocale("en"),
		internal.WithResolver(internal.HeaderResolver("X-Lang")),
		internal.WithMiddleware(internal.Lookup(testDictionary(), internal.WithMatchType(internal.MatchHierarchy))),
	}
	svc, err := internal.New(append(base, opts...)...)
	require.NoError(t, err)
	return svc
}
