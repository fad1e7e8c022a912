package htmx

import (
	"net/http"
	"strings"
)

func IsRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// CurrentURL returns the page URL HTMX reports for the request, if any.
func CurrentURL(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("HX-Current-URL"))
}
