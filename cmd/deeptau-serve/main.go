package main

import (
	"flag"
	"log"

	"github.com/hep-ml/deeptau-serve/internal/backend"
	"github.com/hep-ml/deeptau-serve/internal/deeptau"
	"github.com/hep-ml/deeptau-serve/internal/modelconfig"
	"github.com/hep-ml/deeptau-serve/internal/server"
	"github.com/hep-ml/deeptau-serve/internal/tflitebackend"
)

var (
	configPath = flag.String("config", "models/deeptau_postproc/config.json", "path to model configuration file")
	listenAddr = flag.String("listen", ":8080", "listen address")
	staticPath = flag.String("static", "./static", "path to static status page, empty to disable")
)

func main() {
	flag.Parse()

	cfg, err := modelconfig.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	var b backend.Backend
	switch cfg.Backend {
	case "deeptau", "":
		b = deeptau.New()
	case "tflite":
		b = tflitebackend.New()
	default:
		log.Fatalf("model %q: unknown backend %q", cfg.Name, cfg.Backend)
	}

	if err := b.Initialize(cfg); err != nil {
		log.Fatalf("initialize model %q: %v", cfg.Name, err)
	}
	defer b.Finalize()

	s := server.New(cfg, b, *staticPath)
	if err := s.Run(*listenAddr); err != nil {
		log.Println("Error:", err.Error())
	}
}
