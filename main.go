package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"converter/config"
	"converter/logging"
	"converter/models"
	"converter/services"
	"converter/worker"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	_ = godotenv.Load()

	var (
		assetID       = pflag.String("asset-id", "", "asset id of the record to update (required)")
		inputKey      = pflag.String("input-key", "", "object key of the input LAS/LAZ file (preferred over --input-url)")
		inputURL      = pflag.String("input-url", "", "public URL of the input LAS/LAZ file")
		outputBaseURL = pflag.String("output-base-url", "", "public base URL of the output bucket, no trailing slash (required)")
		withTiles     = pflag.Bool("tiles", false, "also produce a 3D Tiles output tree")
	)
	pflag.Parse()

	if *assetID == "" || *outputBaseURL == "" || (*inputKey == "" && *inputURL == "") {
		fmt.Fprintln(os.Stderr, "usage: converter --asset-id ID --output-base-url URL (--input-key KEY | --input-url URL) [--tiles]")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Load()

	// Validate before constructing any client so a misconfigured job exits
	// without touching storage or the record store.
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	dbSvc, err := services.NewDatabaseService(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer dbSvc.Close()

	s3Svc := services.NewS3Service(cfg)

	jobLog := logging.New(*assetID)
	job := models.Job{
		AssetID:       *assetID,
		InputKey:      *inputKey,
		InputURL:      *inputURL,
		OutputBaseURL: *outputBaseURL,
		WithTiles:     *withTiles,
	}

	var tiles services.Converter
	if job.WithTiles {
		tiles = services.NewPy3dtilesConverter(cfg.Py3dtilesBin, jobLog)
	}

	pipeline := worker.NewPipeline(
		job,
		cfg.S3Bucket,
		s3Svc,
		dbSvc,
		services.NewPotreeConverter(cfg.PotreeBin, jobLog),
		tiles,
		jobLog,
	)

	if err := pipeline.Run(context.Background()); err != nil {
		jobLog.Errorf("conversion failed: %v", err)
		os.Exit(1)
	}
}
