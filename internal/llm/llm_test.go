package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethoscope/internal/review"
)

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry(nil, nil)

	models := r.Models()
	assert.Contains(t, models, "gemini-1.5-pro-latest")
	assert.Contains(t, models, "claude-3-opus-20240229")
	assert.Contains(t, models, "gpt-4o-mini")

	p, ok := r.Lookup("claude-3-haiku-20240307")
	require.True(t, ok)
	assert.Equal(t, ProviderAnthropic, p)

	_, ok = r.Lookup("made-up-model")
	assert.False(t, ok)
}

func TestRegistryCustomModels(t *testing.T) {
	r := NewRegistry(map[Provider][]string{
		ProviderGemini: {"gemini-custom"},
	}, nil)

	p, ok := r.Lookup("gemini-custom")
	require.True(t, ok)
	assert.Equal(t, ProviderGemini, p)

	// Providers with no configured models keep their defaults.
	_, ok = r.Lookup("gpt-4o")
	assert.True(t, ok)
	// But the overridden provider loses its defaults.
	_, ok = r.Lookup("gemini-1.0-pro")
	assert.False(t, ok)
}

func TestCredentials(t *testing.T) {
	t.Setenv(EnvAnthropicKey, "env-key")
	t.Setenv(EnvAnthropicEndpoint, "https://proxy.example/v1/messages")

	key, endpoint, err := Credentials(ProviderAnthropic, "")
	require.NoError(t, err)
	assert.Equal(t, "env-key", key)
	assert.Equal(t, "https://proxy.example/v1/messages", endpoint)

	// A request-scoped key overrides the environment.
	key, _, err = Credentials(ProviderAnthropic, "request-key")
	require.NoError(t, err)
	assert.Equal(t, "request-key", key)
}

func TestCredentialsMissing(t *testing.T) {
	t.Setenv(EnvGeminiKey, "")

	_, _, err := Credentials(ProviderGemini, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestAnalysisPromptFormat(t *testing.T) {
	prompt := AnalysisPrompt("the prompt", "the response", "the ontology")

	assert.Contains(t, prompt, review.SummaryMarker)
	assert.Contains(t, prompt, review.ScoringMarker)
	assert.Contains(t, prompt, "```json")
	assert.Contains(t, prompt, "the ontology")
	assert.Contains(t, prompt, "the response")
	for _, dim := range review.Dimensions {
		assert.Contains(t, prompt, dim)
	}
}

func TestAnalysisPromptEmbeddedOntologyFallback(t *testing.T) {
	prompt := AnalysisPrompt("p", "r", "")
	assert.Contains(t, prompt, "Ethical Ontology")
}

func TestOntologyEmbedded(t *testing.T) {
	text := Ontology()
	require.NotEmpty(t, text)
	for _, heading := range []string{"Deontology", "Teleology", "Virtue Ethics", "Memetics", "AI Welfare"} {
		assert.Contains(t, text, heading)
	}
}

// stubGenerator returns canned outputs in sequence.
type stubGenerator struct {
	outputs []string
	calls   int
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	out := s.outputs[s.calls%len(s.outputs)]
	s.calls++
	return out, nil
}

func TestEngineRun(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "test-key")

	stub := &stubGenerator{outputs: []string{"a response", "an analysis"}}
	registry := NewRegistry(nil, nil)
	engine := NewEngine(registry, nil)
	engine.SetGeneratorFactory(func(Provider, string, string, string) (Generator, error) {
		return stub, nil
	})

	ex, err := engine.Run(context.Background(), "hello", "gpt-4o", "", "ontology text")
	require.NoError(t, err)

	assert.Equal(t, "a response", ex.InitialResponse)
	assert.Equal(t, "an analysis", ex.EthicalAnalysis)
	require.Equal(t, 2, stub.calls)
	// The second call carries the analysis prompt around the first output.
	assert.True(t, strings.Contains(stub.prompts[1], "a response"))
	assert.True(t, strings.Contains(stub.prompts[1], review.ScoringMarker))
}

func TestEngineRunPlaceholders(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "test-key")

	stub := &stubGenerator{outputs: []string{"", ""}}
	engine := NewEngine(NewRegistry(nil, nil), nil)
	engine.SetGeneratorFactory(func(Provider, string, string, string) (Generator, error) {
		return stub, nil
	})

	ex, err := engine.Run(context.Background(), "hello", "gpt-4o", "", "")
	require.NoError(t, err)
	assert.Equal(t, review.PlaceholderNoResponse, ex.InitialResponse)
	assert.Equal(t, review.PlaceholderNoAnalysis, ex.EthicalAnalysis)
}

func TestEngineRunInvalidModel(t *testing.T) {
	engine := NewEngine(NewRegistry(nil, nil), nil)
	_, err := engine.Run(context.Background(), "hello", "made-up", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model")
}
