package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/lingo/internal"
)

// DefaultName is the cookie holding the chosen locale.
const DefaultName = "lang"

// Errors.
var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrBadSig    = errors.New("cookie: invalid signature")
	ErrBadLocale = errors.New("cookie: invalid locale")
)

// Preference stores a visitor's chosen locale in a cookie.
type Preference struct {
	secret   []byte // nil = unsigned
	name     string
	domain   string
	path     string
	maxAge   time.Duration
	secure   bool
	sameSite http.SameSite
}

// Option configures a Preference.
type Option func(*Preference)

// New creates a Preference. The cookie lives for a year by default.
func New(opts ...Option) *Preference {
	p := &Preference{
		name:     DefaultName,
		path:     "/",
		maxAge:   365 * 24 * time.Hour,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithName sets the cookie name.
func WithName(name string) Option {
	return func(p *Preference) {
		if name != "" {
			p.name = name
		}
	}
}

// WithSecret signs the cookie with HMAC-SHA256.
// Secrets shorter than 32 bytes are ignored.
func WithSecret(secret string) Option {
	return func(p *Preference) {
		if len(secret) >= 32 {
			p.secret = []byte(secret)
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(p *Preference) {
		p.domain = domain
	}
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(p *Preference) {
		if path != "" {
			p.path = path
		}
	}
}

// WithMaxAge sets how long the choice is remembered.
func WithMaxAge(d time.Duration) Option {
	return func(p *Preference) {
		if d > 0 {
			p.maxAge = d
		}
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(p *Preference) {
		p.secure = secure
	}
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(p *Preference) {
		p.sameSite = ss
	}
}

// Name returns the cookie name.
func (p *Preference) Name() string {
	return p.name
}

// Set remembers locale.
func (p *Preference) Set(w http.ResponseWriter, locale string) error {
	if err := internal.ValidateTags(locale); err != nil {
		return errors.Join(ErrBadLocale, err)
	}
	value := locale
	if p.secret != nil {
		value += "." + base64.RawURLEncoding.EncodeToString(p.sign(locale))
	}
	http.SetCookie(w, p.cookie(value, int(p.maxAge/time.Second)))
	return nil
}

// Get returns the remembered locale.
func (p *Preference) Get(r *http.Request) (string, error) {
	c, err := r.Cookie(p.name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	if c.Value == "" {
		return "", ErrNotFound
	}
	if p.secret == nil {
		return c.Value, nil
	}

	// Format: locale.base64(signature)
	locale, encoded, ok := strings.Cut(c.Value, ".")
	if !ok {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || !hmac.Equal(sig, p.sign(locale)) {
		return "", ErrBadSig
	}
	return locale, nil
}

// Clear forgets the remembered locale.
func (p *Preference) Clear(w http.ResponseWriter) {
	http.SetCookie(w, p.cookie("", -1))
}

// Resolver reads the remembered locale. Missing and tampered cookies
// resolve to "", so the next resolver of a FirstOf chain is asked.
func (p *Preference) Resolver() internal.Resolver {
	return func(r *http.Request) (string, error) {
		locale, err := p.Get(r)
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBadSig) {
			return "", nil
		}
		return locale, err
	}
}

func (p *Preference) sign(value string) []byte {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write([]byte(value))
	return mac.Sum(nil)
}

func (p *Preference) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     p.name,
		Value:    value,
		Path:     p.path,
		Domain:   p.domain,
		MaxAge:   maxAge,
		Secure:   p.secure,
		HttpOnly: true,
		SameSite: p.sameSite,
	}
}
