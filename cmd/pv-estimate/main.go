package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/secwest/pv-generation-planning/internal/app"
	"github.com/secwest/pv-generation-planning/internal/log"
	"github.com/secwest/pv-generation-planning/pkg/config"
)

const version = "1.2-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to the site configuration file")
	weatherFile := flag.String("weather", "", "Weather CSV overriding every site's configured file")
	outputDir := flag.String("output", "results", "Directory for text and CSV reports")
	httpAddr := flag.String("http", "", "Listen address for the results API (overrides config)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pv-estimate %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	filename, _ := filepath.Abs(*cfgFile)
	provider := config.NewYAMLProvider(filename)

	opts := app.Options{
		OutputDir:   *outputDir,
		WeatherFile: *weatherFile,
		HTTPAddr:    *httpAddr,
	}
	application := app.New(provider, opts, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}
