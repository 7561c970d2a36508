/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/recordgrid/internal/log"
)

// Handler returns the HTTP handler serving every route. Requests carry
// logger in their context.
func (s *Server) Handler(logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		if err := s.HandleLandingRequest(w, w.Header().Set); err != nil {
			log.FromContext(r.Context()).Error("landing page rendering failed", "error", err)
		}
	})
	mux.HandleFunc("GET "+GridPath, func(w http.ResponseWriter, r *http.Request) {
		if res := s.HandleGridRequest(w, r.URL, w.Header().Set); res != nil {
			writeResult(w, r, res)
		}
	})
	mux.HandleFunc("GET /api/grid", func(w http.ResponseWriter, r *http.Request) {
		resp, res := s.HandleGridAPI(r.URL)
		writeJSON(w, r, resp, res)
	})
	mux.HandleFunc("GET /api/choices", func(w http.ResponseWriter, r *http.Request) {
		resp, res := s.HandleChoicesAPI(r.URL)
		writeJSON(w, r, resp, res)
	})
	mux.HandleFunc("GET /api/popup", func(w http.ResponseWriter, r *http.Request) {
		resp, res := s.HandlePopupAPI(r.URL)
		writeJSON(w, r, resp, res)
	})
	mux.HandleFunc("POST /api/reorder", func(w http.ResponseWriter, r *http.Request) {
		resp, res := s.HandleReorderAPI(r.URL, r.Body)
		writeJSON(w, r, resp, res)
	})
	return withLogger(logger, mux)
}

func withLogger(logger *slog.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := log.WithLogger(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.Log(ctx, log.LevelTrace, "request", "method", r.Method, "url", r.URL.String(), "duration", time.Since(start))
	})
}

// writeResult reports a failed request. Results without a status code are
// internal errors; their message is not shown to the client.
func writeResult(w http.ResponseWriter, r *http.Request, res *HandlerResult) {
	logger := log.FromContext(r.Context())
	if res.StatusCode == 0 {
		logger.Error("request failed", "url", r.URL.String(), "error", res.Error)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	logger.Debug("request rejected", "url", r.URL.String(), "status", res.StatusCode, "message", res.Message)
	http.Error(w, res.Message, res.StatusCode)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any, res *HandlerResult) {
	if res != nil {
		writeResult(w, r, res)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).Error("encoding response failed", "error", err)
	}
}
