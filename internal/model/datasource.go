package model

import (
	"regexp"
	"strings"
)

// RedactedValue replaces secrets found in data source URIs.
const RedactedValue = "***REDACTED***"

// DataSourceURL returns the location of a layer's data as shown in the
// layers table. Vector layers and GDAL rasters report their full source.
// Web services (wms, wcs, xyz, arcgis…) report the value of the url
// parameter. A source without a url parameter is returned unchanged.
func DataSourceURL(l Layer) string {
	source := l.Source()
	if _, ok := l.(*VectorLayer); ok {
		return source
	}
	if _, ok := l.(*RasterLayer); ok && l.ProviderType() == "gdal" {
		return source
	}
	if u, ok := URIParam(source, "url"); ok {
		return u
	}
	return source
}

// URIParam returns the value of key in a provider URI. Both query-style
// ("a=1&url=http://x") and key='value' connection styles
// ("dbname='gis' host=db") are understood. The match is case-sensitive and
// anchored at parameter boundaries, so "url" does not match "baseurl".
func URIParam(source, key string) (string, bool) {
	prefix := key + "="
	for i := 0; i < len(source); {
		j := strings.Index(source[i:], prefix)
		if j < 0 {
			return "", false
		}
		start := i + j
		if start == 0 || isParamSeparator(source[start-1]) {
			return readParamValue(source[start+len(prefix):]), true
		}
		i = start + len(prefix)
	}
	return "", false
}

func isParamSeparator(c byte) bool {
	return c == '&' || c == ' ' || c == '|' || c == '?' || c == '\t'
}

// readParamValue reads a value that is either quoted or runs up to the next
// '&' (or whitespace for connection-string style values).
func readParamValue(s string) string {
	if s == "" {
		return ""
	}
	if q := s[0]; q == '\'' || q == '"' {
		if end := strings.IndexByte(s[1:], q); end >= 0 {
			return s[1 : end+1]
		}
		return s[1:]
	}
	end := strings.IndexAny(s, "& \t")
	if end < 0 {
		return s
	}
	return s[:end]
}

var (
	secretParamPattern = regexp.MustCompile(
		`(?i)(^|[&\s|?;])(password|passwd|pwd|token|apikey|api_key|access_token|secret)=('[^']*'|"[^"]*"|[^&\s|;]*)`)
	userInfoPattern = regexp.MustCompile(`(?i)(://[^/:@\s]+:)[^@/\s]+@`)
)

// RedactSource masks passwords, tokens and URL credentials inside a data
// source URI. Everything else is left untouched.
func RedactSource(source string) string {
	out := secretParamPattern.ReplaceAllStringFunc(source, func(m string) string {
		parts := secretParamPattern.FindStringSubmatch(m)
		value := parts[3]
		if value == "" || value == "''" || value == `""` {
			return m
		}
		masked := RedactedValue
		if len(value) >= 2 && (value[0] == '\'' || value[0] == '"') {
			masked = string(value[0]) + RedactedValue + string(value[0])
		}
		return parts[1] + parts[2] + "=" + masked
	})
	return userInfoPattern.ReplaceAllString(out, "${1}"+RedactedValue+"@")
}

// ContainsSecret reports whether RedactSource would change source.
func ContainsSecret(source string) bool {
	return RedactSource(source) != source
}
