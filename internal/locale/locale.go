// Package locale maps request paths and headers onto the supported UI locales.
package locale

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// CookieName stores the user's last explicit locale choice.
const CookieName = "locale"

type Resolver struct {
	codes   []string
	tags    []language.Tag
	def     string
	matcher language.Matcher
	byCode  map[string]struct{}
}

// NewResolver builds a resolver. The default locale is always supported and is placed
// first so the matcher falls back to it.
func NewResolver(supported []string, def string) *Resolver {
	def = strings.ToLower(strings.TrimSpace(def))
	if def == "" {
		def = "en"
	}

	codes := []string{def}
	for _, code := range supported {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" || code == def || contains(codes, code) {
			continue
		}
		codes = append(codes, code)
	}

	r := &Resolver{
		codes:  codes,
		def:    def,
		byCode: make(map[string]struct{}, len(codes)),
	}
	for _, code := range codes {
		r.byCode[code] = struct{}{}
		r.tags = append(r.tags, language.Make(code))
	}
	r.matcher = language.NewMatcher(r.tags)
	return r
}

func (r *Resolver) Default() string {
	return r.def
}

func (r *Resolver) Supported() []string {
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}

func (r *Resolver) IsSupported(code string) bool {
	_, ok := r.byCode[strings.ToLower(code)]
	return ok
}

// Tag returns the language tag for a supported code, or the default tag.
func (r *Resolver) Tag(code string) language.Tag {
	for i, c := range r.codes {
		if c == code {
			return r.tags[i]
		}
	}
	return r.tags[0]
}

// Split strips a supported locale prefix from path. When the first segment is not a
// supported locale, it returns the default locale, the untouched path and false.
func (r *Resolver) Split(path string) (string, string, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	first, rest, _ := strings.Cut(trimmed, "/")
	if first != "" && r.IsSupported(first) {
		return strings.ToLower(first), "/" + rest, true
	}
	return r.def, path, false
}

// Negotiate picks a locale for a request without a path prefix: cookie first, then
// Accept-Language, then the default.
func (r *Resolver) Negotiate(req *http.Request) string {
	if req == nil {
		return r.def
	}
	if cookie, err := req.Cookie(CookieName); err == nil && r.IsSupported(cookie.Value) {
		return strings.ToLower(cookie.Value)
	}
	if accept := strings.TrimSpace(req.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, index, confidence := r.matcher.Match(tags...)
			if confidence != language.No {
				return r.codes[index]
			}
		}
	}
	return r.def
}

// Path prefixes path with the locale.
func (r *Resolver) Path(code, path string) string {
	if !r.IsSupported(code) {
		code = r.def
	}
	if path == "" || path == "/" {
		return "/" + code
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "/" + code + path
}

func (r *Resolver) SetCookie(w http.ResponseWriter, code string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    code,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
