package main

import (
	"encoding/json"
	"net/http"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/api"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/config"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/infrastructure"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "ok", "version": cfg.Version})
	}))

	router.HandleNative("GET /readyz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			failures := map[string]string{}
			for name, err := range infra.Lifecycle.Failures() {
				failures[name] = err.Error()
			}
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "failures": failures})
			return
		}
		if err := infra.Ping(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "database": err.Error()})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	}))

	if cfg.Metrics.Enabled {
		router.HandleNative("GET "+cfg.Metrics.Path, infra.Metrics.Handler())
	}

	return router
}

func writeStatus(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
