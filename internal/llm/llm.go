// Package llm generates model responses and ethical analyses against the
// configured provider APIs. Providers are selected per model name; blocked
// or empty generations degrade to fixed placeholder strings rather than
// errors so the analysis pipeline always has text to parse.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"ethoscope/internal/review"
)

// Environment variable names for credentials and endpoint overrides.
const (
	EnvGeminiKey         = "GEMINI_API_KEY"
	EnvAnthropicKey      = "ANTHROPIC_API_KEY"
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvGeminiEndpoint    = "GEMINI_API_ENDPOINT"
	EnvAnthropicEndpoint = "ANTHROPIC_API_ENDPOINT"
	EnvOpenAIEndpoint    = "OPENAI_API_ENDPOINT"
)

// Provider identifies which backend serves a model.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// Generator produces text for a prompt. Implementations are stateless per
// call and safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Registry maps model names to providers and resolves credentials.
type Registry struct {
	models map[string]Provider
	order  []string
	log    *zap.Logger
}

// DefaultModels is the model list served when configuration names none.
var DefaultModels = map[Provider][]string{
	ProviderGemini: {
		"gemini-1.5-pro-latest",
		"gemini-1.5-flash-latest",
		"gemini-1.0-pro",
	},
	ProviderAnthropic: {
		"claude-3-opus-20240229",
		"claude-3-sonnet-20240229",
		"claude-3-haiku-20240307",
	},
	ProviderOpenAI: {
		"gpt-4o",
		"gpt-4o-mini",
	},
}

// providerOrder fixes the listing order of providers in Models().
var providerOrder = []Provider{ProviderGemini, ProviderAnthropic, ProviderOpenAI}

// NewRegistry builds a registry from per-provider model lists. Empty lists
// fall back to DefaultModels for that provider.
func NewRegistry(models map[Provider][]string, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{models: map[string]Provider{}, log: log}
	for _, provider := range providerOrder {
		names := models[provider]
		if len(names) == 0 {
			names = DefaultModels[provider]
		}
		for _, name := range names {
			if _, dup := r.models[name]; dup {
				continue
			}
			r.models[name] = provider
			r.order = append(r.order, name)
		}
	}
	return r
}

// Models lists every registered model name in declaration order.
func (r *Registry) Models() []string {
	return append([]string(nil), r.order...)
}

// Lookup returns the provider serving a model name.
func (r *Registry) Lookup(model string) (Provider, bool) {
	p, ok := r.models[model]
	return p, ok
}

// Credentials resolves the API key and optional endpoint override for a
// provider. A non-empty request key takes priority over the environment.
func Credentials(provider Provider, requestKey string) (key, endpoint string, err error) {
	var keyEnv, endpointEnv, display string
	switch provider {
	case ProviderGemini:
		keyEnv, endpointEnv, display = EnvGeminiKey, EnvGeminiEndpoint, "Gemini"
	case ProviderAnthropic:
		keyEnv, endpointEnv, display = EnvAnthropicKey, EnvAnthropicEndpoint, "Anthropic"
	case ProviderOpenAI:
		keyEnv, endpointEnv, display = EnvOpenAIKey, EnvOpenAIEndpoint, "OpenAI"
	default:
		return "", "", fmt.Errorf("unknown provider %q", provider)
	}

	key = strings.TrimSpace(requestKey)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(keyEnv))
	}
	if key == "" {
		return "", "", fmt.Errorf("API key for %s not provided via request or %s env var", display, keyEnv)
	}
	return key, os.Getenv(endpointEnv), nil
}

// Engine runs the two-step generate-then-analyze flow for a model.
type Engine struct {
	registry *Registry
	log      *zap.Logger

	// newGenerator is swappable in tests.
	newGenerator func(provider Provider, model, apiKey, endpoint string) (Generator, error)
}

func NewEngine(registry *Registry, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{registry: registry, log: log}
	e.newGenerator = e.defaultGenerator
	return e
}

func (e *Engine) defaultGenerator(provider Provider, model, apiKey, endpoint string) (Generator, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiGenerator(model, apiKey, endpoint)
	case ProviderAnthropic:
		return NewAnthropicGenerator(model, apiKey, endpoint, e.log), nil
	case ProviderOpenAI:
		return NewOpenAIGenerator(model, apiKey, endpoint), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// SetGeneratorFactory overrides provider construction, mainly for tests.
func (e *Engine) SetGeneratorFactory(f func(provider Provider, model, apiKey, endpoint string) (Generator, error)) {
	e.newGenerator = f
}

// Registry exposes the engine's model registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Exchange is the outcome of one generate-and-analyze round trip.
type Exchange struct {
	Prompt          string
	Model           string
	InitialResponse string
	EthicalAnalysis string
}

// Run generates a response for the prompt and then an ethical analysis of
// that response. Empty generations become the fixed placeholders; only
// transport and credential failures surface as errors.
func (e *Engine) Run(ctx context.Context, prompt, model, requestKey, ontology string) (Exchange, error) {
	provider, ok := e.registry.Lookup(model)
	if !ok {
		return Exchange{}, fmt.Errorf("invalid model %q", model)
	}

	key, endpoint, err := Credentials(provider, requestKey)
	if err != nil {
		return Exchange{}, err
	}

	gen, err := e.newGenerator(provider, model, key, endpoint)
	if err != nil {
		return Exchange{}, fmt.Errorf("create %s generator: %w", provider, err)
	}

	initial, err := gen.Generate(ctx, prompt)
	if err != nil {
		return Exchange{}, fmt.Errorf("generate response: %w", err)
	}
	if strings.TrimSpace(initial) == "" {
		e.log.Warn("empty response from model", zap.String("model", model))
		initial = review.PlaceholderNoResponse
	}

	analysis, err := gen.Generate(ctx, AnalysisPrompt(prompt, initial, ontology))
	if err != nil {
		return Exchange{}, fmt.Errorf("generate ethical analysis: %w", err)
	}
	if strings.TrimSpace(analysis) == "" {
		e.log.Warn("empty analysis from model", zap.String("model", model))
		analysis = review.PlaceholderNoAnalysis
	}

	return Exchange{
		Prompt:          prompt,
		Model:           model,
		InitialResponse: initial,
		EthicalAnalysis: analysis,
	}, nil
}
