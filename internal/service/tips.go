package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lfarias/imc-wellness/internal/bmi"
	"github.com/lfarias/imc-wellness/internal/cache"
	"github.com/lfarias/imc-wellness/internal/gemini"
)

const systemPrompt = "Aja como um nutricionista e coach de bem-estar. " +
	"Forneça dicas saudáveis, práticas e motivadoras, baseadas em informações recentes, " +
	"para a classificação de IMC fornecida. O texto deve ser conciso e amigável, em um único parágrafo."

const userQueryTemplate = "Gere dicas saudáveis e motivadoras para uma pessoa com a seguinte classificação " +
	"de IMC: '%s'. Foque em passos pequenos, alcançáveis e sustentáveis. " +
	"Responda integralmente em português."

// ErrAPIKeyMissing is returned before any network I/O when no Gemini API
// key was configured.
var ErrAPIKeyMissing = errors.New("gemini API key is not configured")

// ContentGenerator issues one grounded text-generation request.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, systemPrompt, userQuery string) (*gemini.GenerateResponse, error)
}

// Tips generates wellness tips for BMI classifications, caching one tip
// per classification so repeated assessments skip the API call.
type Tips struct {
	generator ContentGenerator
	cache     *cache.Manager
}

// NewTips creates the tip service. A nil generator means no API key is
// configured; Generate then fails fast without touching the network.
func NewTips(generator ContentGenerator, cacheManager *cache.Manager) *Tips {
	return &Tips{
		generator: generator,
		cache:     cacheManager,
	}
}

// TipResult pairs a generated tip with whether it came from cache.
type TipResult struct {
	Tip    gemini.GenerateResponse
	Cached bool
}

// Generate returns the wellness tip for a classification, from cache when
// possible.
func (t *Tips) Generate(ctx context.Context, category bmi.Category) (*TipResult, error) {
	if cached, err := t.cache.GetTip(ctx, category); err == nil {
		return &TipResult{Tip: *cached, Cached: true}, nil
	} else if err != cache.ErrCacheMiss {
		log.Printf("Cache lookup failed for %s: %v", category, err)
	}

	if t.generator == nil {
		return nil, ErrAPIKeyMissing
	}

	userQuery := fmt.Sprintf(userQueryTemplate, category)
	resp, err := t.generator.GenerateContent(ctx, systemPrompt, userQuery)
	if err != nil {
		return nil, fmt.Errorf("generating tip for %s: %w", category, err)
	}

	if err := t.cache.SetTip(ctx, category, *resp); err != nil {
		log.Printf("Failed to cache tip for %s: %v", category, err)
	}

	return &TipResult{Tip: *resp}, nil
}

// Warmup pre-generates tips for every classification so user requests hit
// the cache. Classifications already cached are skipped.
func (t *Tips) Warmup(ctx context.Context) error {
	if t.generator == nil {
		return ErrAPIKeyMissing
	}

	var failed int
	for _, category := range bmi.Categories() {
		cached, err := t.cache.IsCached(ctx, category)
		if err != nil {
			log.Printf("Warmup cache check failed for %s: %v", category, err)
		}
		if cached {
			continue
		}

		if _, err := t.Generate(ctx, category); err != nil {
			log.Printf("Warmup failed for %s: %v", category, err)
			failed++
			continue
		}
		log.Printf("Warmed up tip for %s", category)
	}

	if failed > 0 {
		return fmt.Errorf("warmup failed for %d of %d classifications", failed, len(bmi.Categories()))
	}
	return nil
}
