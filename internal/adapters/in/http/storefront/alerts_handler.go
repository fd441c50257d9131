package storefront

import (
	"net/http"
	"strconv"
)

// listAlerts returns the alert backlog, newest first. ?drain=true also
// empties it.
func (a *API) listAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := current(r).Alerts
	if drain, _ := strconv.ParseBool(r.URL.Query().Get("drain")); drain {
		writeJSON(w, http.StatusOK, alerts.Drain())
		return
	}
	writeJSON(w, http.StatusOK, alerts.List())
}
