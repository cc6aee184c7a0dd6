package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the aggregated component statuses as JSON. It returns 503
// whenever any registered check fails, so orchestrators restart the bot when
// the database or Telegram becomes unreachable.
func (c *Checker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		results := c.Check(r.Context())

		status := http.StatusOK
		for _, state := range results {
			if state != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	})
}
