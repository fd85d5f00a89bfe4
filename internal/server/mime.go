package server

import (
	"mime"
	"path"
	"strings"
)

func init() {
	// Force register the WASM mime type
	_ = mime.AddExtensionType(".wasm", "application/wasm")
}

// ResolveContentType returns the Content-Type served for name. Stylesheets
// and scripts get fixed types so browsers never reject them over a host
// mime table; everything else uses the library guess, which may be empty.
func ResolveContentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".css"):
		return "text/css"
	case strings.HasSuffix(name, ".js"):
		return "application/javascript"
	}
	return mime.TypeByExtension(path.Ext(name))
}
