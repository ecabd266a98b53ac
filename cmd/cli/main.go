package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/lfarias/imc-wellness/internal/bmi"
	"github.com/lfarias/imc-wellness/internal/cache"
	"github.com/lfarias/imc-wellness/internal/config"
	"github.com/lfarias/imc-wellness/internal/gemini"
	"github.com/lfarias/imc-wellness/internal/service"
)

func main() {
	var (
		weight = flag.Float64("peso", 0, "Peso em kg")
		height = flag.Float64("altura", 0, "Altura em metros")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cacheManager, err := cache.NewManager(cfg.CacheType, cfg.CacheBucket, time.Duration(cfg.CacheDuration)*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create cache manager: %v", err)
	}
	defer cacheManager.Close()

	var generator service.ContentGenerator
	if cfg.GeminiAPIKey != "" {
		generator = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	}

	assessor := service.NewAssessor(service.NewTips(generator, cacheManager))

	measurement := bmi.Measurement{WeightKg: *weight, HeightM: *height}
	assessment, err := assessor.Assess(context.Background(), measurement)
	if err != nil {
		log.Fatalf("%s", service.UserErrorMessage(err))
	}

	fmt.Printf("IMC: %.2f\n", assessment.BMI)
	fmt.Printf("Classificação: %s\n\n", assessment.Classification)
	fmt.Println(assessment.Tip)
	if len(assessment.Sources) > 0 {
		fmt.Println("\nFontes de Informação (Google Search):")
		for _, source := range assessment.Sources {
			fmt.Printf("  * %s (%s)\n", source.Title, source.URL)
		}
	}
}
