package main

import (
	"feedloader/internal/app"
	"feedloader/internal/config"
	"flag"
	"log"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: could not load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("FATAL: invalid config: %v", err)
	}
	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: could not init app: %v", err)
	}
	if err := application.Run(); err != nil {
		log.Fatalf("FATAL: app stopped with error: %v", err)
	}
}
