package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lfarias/imc-wellness/internal/bmi"
	"github.com/lfarias/imc-wellness/internal/gemini"
)

// User-facing messages, matching the page language. Tip-generation failures
// are rendered inline in place of the tip; they never fail the assessment.
const (
	msgAPIKeyMissing = "Erro: A chave da API Gemini não foi configurada. " +
		"Por favor, configure a variável de ambiente 'GEMINI_API_KEY'."
	msgInvalidInput = "Por favor, insira valores válidos para peso e altura."
	msgOverflow     = "Os valores inseridos são muito grandes para calcular o IMC. Por favor, verifique."
)

// Assessment is the full result record rendered by the UI.
type Assessment struct {
	BMI            float64         `json:"bmi"`
	Classification bmi.Category    `json:"classification"`
	Tip            string          `json:"tip"`
	Sources        []gemini.Source `json:"sources"`
	Cached         bool            `json:"cached"`
}

// Assessor runs the full pipeline: validate, calculate, classify, tip.
type Assessor struct {
	tips *Tips
}

// NewAssessor creates an assessor backed by the tip service.
func NewAssessor(tips *Tips) *Assessor {
	return &Assessor{tips: tips}
}

// Assess computes BMI for a measurement and attaches the wellness tip.
// Invalid measurements and overflow return an error; tip failures degrade
// to an inline message so the numeric result still renders.
func (a *Assessor) Assess(ctx context.Context, m bmi.Measurement) (*Assessment, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	value, err := bmi.Calculate(m)
	if err != nil {
		return nil, err
	}

	assessment := &Assessment{
		BMI:            value,
		Classification: bmi.Classify(value),
		Sources:        []gemini.Source{},
	}

	result, err := a.tips.Generate(ctx, assessment.Classification)
	if err != nil {
		assessment.Tip = TipErrorMessage(err)
		return assessment, nil
	}

	assessment.Tip = result.Tip.Text
	if result.Tip.Sources != nil {
		assessment.Sources = result.Tip.Sources
	}
	assessment.Cached = result.Cached
	return assessment, nil
}

// TipErrorMessage converts a tip-generation error to the user-facing text
// shown in place of the tip.
func TipErrorMessage(err error) string {
	var transportErr *gemini.TransportError

	switch {
	case errors.Is(err, ErrAPIKeyMissing):
		return msgAPIKeyMissing
	case errors.As(err, &transportErr):
		return fmt.Sprintf("Erro de conexão com a API Gemini: %v", transportErr.Err)
	default:
		return fmt.Sprintf("Ocorreu um erro ao processar a resposta da API: %v", err)
	}
}

// UserErrorMessage converts an assessment error to the user-facing text
// shown instead of a result.
func UserErrorMessage(err error) string {
	var validationErr *bmi.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return msgInvalidInput
	case errors.Is(err, bmi.ErrOverflow):
		return msgOverflow
	default:
		return fmt.Sprintf("Ocorreu um erro no cálculo: %v", err)
	}
}
