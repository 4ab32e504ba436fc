// Package explain produces a short human-readable narrative for each
// classified detection. It uses the Gemini API when a key is configured
// and falls back to a deterministic template otherwise.
package explain

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"exoplanet-lab/internal/domain"
)

const geminiModel = "gemini-2.5-flash"

const systemPrompt = `You are an assistant summarizing exoplanet transit detections
for astronomers reviewing candidate lists. Given the numeric parameters of a
detected signal and its classification, write a short plain-language summary
(2-3 sentences) of what was found and how credible it is. Do not invent
parameters that were not provided. No markdown formatting.`

// Explainer generates detection summaries.
type Explainer struct {
	client *genai.Client // nil means template-only
	logger *log.Logger
}

// NewExplainer creates an explainer. An empty API key disables the model
// path; every summary then comes from the template.
func NewExplainer(ctx context.Context, apiKey string, logger *log.Logger) (*Explainer, error) {
	if logger == nil {
		logger = log.Default()
	}
	if apiKey == "" {
		return &Explainer{logger: logger}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Explainer{client: client, logger: logger}, nil
}

// Explain returns a narrative for one classified signal. Never returns an
// error: model failure degrades to the template.
func (e *Explainer) Explain(ctx context.Context, f domain.FeatureVector, cls domain.Classification) string {
	if e.client == nil {
		return TemplateExplain(f, cls)
	}

	prompt := fmt.Sprintf(
		"Detection: period %.3f days, transit depth %.0f ppm, duration %.2f hours, "+
			"estimated radius %.2f Earth radii, SNR %.1f. "+
			"Classification: %s with probability %.2f. Basis: %s.",
		f.OrbitalPeriodDays, f.TransitDepthPPM, f.TransitDurationHours,
		f.PlanetaryRadiusEarth, f.SNR, cls.Label, cls.Probability, cls.Reasoning)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleModel),
		Temperature:       genai.Ptr(float32(0.4)),
		MaxOutputTokens:   int32(200),
	}

	resp, err := e.client.Models.GenerateContent(ctx, geminiModel,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		e.logger.Printf("explanation model failed, using template: %v", err)
		return TemplateExplain(f, cls)
	}

	text := strings.TrimSpace(strings.ReplaceAll(resp.Text(), "*", ""))
	if text == "" {
		return TemplateExplain(f, cls)
	}
	return text
}

// TemplateExplain renders the deterministic fallback narrative.
func TemplateExplain(f domain.FeatureVector, cls domain.Classification) string {
	var strength string
	switch {
	case f.SNR > 10:
		strength = "a strong"
	case f.SNR > 5:
		strength = "a moderate"
	default:
		strength = "a weak"
	}

	return fmt.Sprintf(
		"Detected %s periodic dimming signal repeating every %.2f days, with a depth of "+
			"%.0f ppm lasting about %.1f hours per transit, consistent with a body of roughly "+
			"%.1f Earth radii. Classified as %s (probability %.2f): %s",
		strength, f.OrbitalPeriodDays, f.TransitDepthPPM, f.TransitDurationHours,
		f.PlanetaryRadiusEarth, cls.Label, cls.Probability, cls.Reasoning)
}
