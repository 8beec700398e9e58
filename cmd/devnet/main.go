// Command devnet serves an in-memory canvas backend for local development.
package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phanxgames/pixelcanvas"
	"github.com/phanxgames/pixelcanvas/internal/devnet"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	configPath := flag.String("config", "", "canvas config YAML (defaults if empty)")
	account := flag.String("account", "0x0328ced46664355fc4b885ae7011af202313056a7e3d44827fb24c9d3206aaa0", "devnet account address")
	worlds := flag.Int("worlds", 1, "number of sub-worlds to create")
	flag.Parse()

	cfg := pixelcanvas.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = pixelcanvas.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	store := devnet.NewStore(cfg.GridWidth, cfg.GridHeight, len(cfg.Palette), *account)
	for id := 0; id < *worlds; id++ {
		store.CreateWorld(id, cfg.GridWidth, cfg.GridHeight)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	devnet.NewHandler(store).RegisterRoutes(r)

	server := &http.Server{
		Addr:              *addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("devnet: %dx%d canvas, %d worlds, listening on http://localhost%s",
		cfg.GridWidth, cfg.GridHeight, *worlds, *addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
