package app

import "strings"

// localeResolver maps a requested locale onto a supported one.
type localeResolver struct {
	supported []string
	fallback  string
}

func newLocaleResolver(supported []string, fallback string) localeResolver {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		fallback = "en-US"
	}
	out := make([]string, 0, len(supported)+1)
	seen := map[string]struct{}{}
	for _, loc := range append([]string{fallback}, supported...) {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(loc)]; ok {
			continue
		}
		seen[strings.ToLower(loc)] = struct{}{}
		out = append(out, loc)
	}
	return localeResolver{supported: out, fallback: fallback}
}

// resolve tries an exact match, then the first supported locale sharing
// the language subtag, then the fallback.
func (r localeResolver) resolve(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return r.fallback
	}
	for _, loc := range r.supported {
		if strings.EqualFold(loc, requested) {
			return loc
		}
	}
	lang := strings.ToLower(strings.SplitN(strings.ReplaceAll(requested, "_", "-"), "-", 2)[0])
	for _, loc := range r.supported {
		if strings.HasPrefix(strings.ToLower(loc), lang+"-") {
			return loc
		}
	}
	return r.fallback
}

// PreferredLocale returns the first language tag of an Accept-Language header.
func PreferredLocale(acceptLanguage string) string {
	first := strings.SplitN(acceptLanguage, ",", 2)[0]
	first = strings.SplitN(first, ";", 2)[0]
	first = strings.TrimSpace(first)
	if first == "*" {
		return ""
	}
	return first
}
