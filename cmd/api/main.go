package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andresuchdata/bizdash-go/internal/config"
	"github.com/andresuchdata/bizdash-go/internal/sheets"
	"github.com/andresuchdata/bizdash-go/pkg/logger"
	"github.com/gorilla/mux"
)

// Diagnostics server for the spreadsheet source: lists sheets and returns raw
// ranges so column layouts can be checked against the configured mapping.
func main() {
	cfg := config.Load()
	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	backend, err := sheets.Open(ctx, cfg.Sheets)
	cancel()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize row source")
	}

	r := mux.NewRouter()

	handler := sheets.NewHandler(backend, backend)
	handler.RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Log.Info().Str("addr", addr).Str("source", sheets.Name(cfg.Sheets)).Msg("Diagnostics server starting")
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Log.Fatal().Err(err).Msg("Diagnostics server stopped")
	}
}
