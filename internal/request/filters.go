// Package request reads listing parameters from incoming requests.
package request

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/codr1/pickup/internal/api/htmx"
	"github.com/codr1/pickup/internal/games"
)

func filtersFromValues(values url.Values) games.FilterParams {
	return games.FilterParams{
		Sport:    values.Get("sport"),
		Gym:      values.Get("gym"),
		DateFrom: values.Get("date_from"),
		DateTo:   values.Get("date_to"),
	}
}

// GameFilters parses the listing filters from the query, falling back to the
// HX-Current-URL header when the query carries none.
func GameFilters(r *http.Request) games.FilterParams {
	params := filtersFromValues(r.URL.Query())
	if !params.IsEmpty() {
		return params
	}

	currentURL := htmx.CurrentURL(r)
	if currentURL == "" {
		return params
	}

	parsed, err := url.Parse(currentURL)
	if err != nil {
		log.Ctx(r.Context()).
			Debug().
			Err(err).
			Str("hx_current_url", currentURL).
			Msg("Failed to parse HX-Current-URL")
		return params
	}

	return filtersFromValues(parsed.Query())
}

// FormFields flattens a submitted form into its first value per key. Keys
// that were not submitted stay absent.
func FormFields(r *http.Request) map[string]string {
	fields := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	return fields
}
