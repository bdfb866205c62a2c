// Package adminapi exposes the gateway's HTTP admin surface (SPEC_FULL.md
// §C14, an ambient addition the original wire protocol has no need of):
// a health probe, Prometheus metrics, and a per-device recent-readings
// lookup.
//
// Grounded on the teacher's `mux.NewRouter()` + `gorilla/handlers`
// bootstrap in `cmd/cc-backend/main.go` and its `internal/api` handler
// style (`rest.go`'s `MountRoutes`), adapted from the teacher's full REST
// API (jobs/users/clusters) down to the handful of read-only endpoints
// this spec's gateway actually needs.
package adminapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Lemminkyinen/ruuvi-listener/internal/storage"
	"github.com/Lemminkyinen/ruuvi-listener/pkg/log"
)

// API holds the dependencies the admin handlers need.
type API struct {
	Store *storage.Store
}

// Router builds the mux.Router serving /healthz, /metrics and
// /readings/{mac}, wrapped in gorilla/handlers' combined access-log
// middleware (the teacher wraps its own router the same way in
// `cmd/cc-backend/main.go`).
func (a *API) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", a.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/readings/{mac}", a.readings).Methods(http.MethodGet)

	return handlers.CombinedLoggingHandler(logWriter{}, r)
}

// logWriter adapts pkg/log to io.Writer so gorilla/handlers' access log
// goes through the same leveled logger as everything else.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	log.Infof("%s", string(p))
	return len(p), nil
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.Store.DB().PingContext(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "db unreachable"})
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *API) readings(w http.ResponseWriter, r *http.Request) {
	mac := mux.Vars(r)["mac"]

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := a.Store.RecentReadings(r.Context(), mac, limit)
	if err != nil {
		log.Errorf("adminapi: recent readings for %s: %s", mac, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}
