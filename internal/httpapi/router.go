package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"
)

func NewMux(d Deps) *http.ServeMux {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.BaseCtx == nil {
		d.BaseCtx = context.Background()
	}
	if d.Tracker == nil {
		d.Tracker = &Tracker{}
	}
	if d.CfgVal == nil {
		d.CfgVal = &atomic.Value{}
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{}.Health,
	}))

	rh := RunsHandler{Runs: d.Runs}
	mux.HandleFunc("/runs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.List,
	}))

	sh := SyncHandler{Tracker: d.Tracker, RunSync: d.RunSync, Log: d.Log, Base: d.BaseCtx}
	mux.HandleFunc("/sync/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.Status,
	}))
	mux.HandleFunc("/sync/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.Run,
	}))

	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	ch := ConfigHandler{CfgVal: d.CfgVal, UserCfgPath: d.UserCfgPath}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	return mux
}

// NewHandler wraps NewMux in the standard middleware chain.
func NewHandler(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")
	return Chain(NewMux(d), RequestID, AccessLog(log), Recover(log))
}
