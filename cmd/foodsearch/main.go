package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/nutrifind/go-food-search/api"
	"github.com/nutrifind/go-food-search/config"
	"github.com/nutrifind/go-food-search/internal/kb"
	"github.com/nutrifind/go-food-search/internal/search"
	"github.com/nutrifind/go-food-search/store"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	var cfg *config.ServerConfig
	if *configPath != "" {
		loaded, err := config.LoadServerConfig(*configPath)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		cfg = loaded
	} else {
		cfg = config.DefaultServerConfig()
	}
	if problems := cfg.Engine.Validate(); len(problems) > 0 {
		log.Fatalf("Error: invalid engine settings: %v", problems)
	}

	records := store.New()
	storePath := filepath.Join(cfg.DataDir, "records.gob")
	if err := records.Load(storePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("No record store at %s, starting empty", storePath)
		} else {
			log.Fatalf("Error: failed to load record store: %v", err)
		}
	} else {
		log.Printf("Loaded %d records from %s", records.Len(), storePath)
	}

	engine := search.NewEngine(&cfg.Engine, kb.New(), records)
	if records.Len() > 0 {
		snap := engine.Rebuild(records.All())
		log.Printf("Published snapshot version %d with %d records", snap.Version, len(snap.Records))
	}

	server := api.NewServer(cfg, engine, records)
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	log.Printf("Listening on %s", addr)
	if err := server.Router().Run(addr); err != nil {
		log.Fatalf("Error: server stopped: %v", err)
	}
}
