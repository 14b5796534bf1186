package lsp

import (
	"net/url"
	"path/filepath"
)

// uriToPath converts a file: URI to an absolute local path. Plain paths
// pass through untouched; non-file schemes map to "".
func uriToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	var path string
	switch parsed.Scheme {
	case "":
		path = uri
	case "file":
		// url.Parse percent-decodes Path once; decoding again would
		// corrupt names with literal % sequences.
		path = parsed.Path
	default:
		return ""
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

// pathToURI converts a local path to a file: URI.
func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
