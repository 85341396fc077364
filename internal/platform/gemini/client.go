// Package gemini is a thin client for the two generateContent calls the
// content pipeline makes: text simplification and speech synthesis.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hphuyvu-stack/inclusing/internal/domain"
	"github.com/hphuyvu-stack/inclusing/internal/platform/envutil"
	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
	"github.com/hphuyvu-stack/inclusing/internal/platform/pcm"
)

var (
	ErrMissingAPIKey = errors.New("API Key not found")
	// ErrNoAudio means the speech response carried no inline audio.
	ErrNoAudio = errors.New("gemini: response contained no audio")
)

const (
	DefaultBaseURL   = "https://generativelanguage.googleapis.com"
	DefaultTextModel = "gemini-3-flash-preview"
	DefaultTTSModel  = "gemini-2.5-flash-preview-tts"

	simplifyTemperature = 0.7
)

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type Config struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	TextModel string `yaml:"text_model"`
	TTSModel  string `yaml:"tts_model"`
	// Timeout bounds a single call; zero leaves calls bounded only by ctx.
	Timeout time.Duration `yaml:"timeout"`
}

// ConfigFromEnv overlays GEMINI_* variables on base.
func ConfigFromEnv(base Config) Config {
	cfg := base
	cfg.APIKey = envutil.String("GEMINI_API_KEY", envutil.String("API_KEY", cfg.APIKey))
	cfg.BaseURL = envutil.String("GEMINI_BASE_URL", cfg.BaseURL)
	cfg.TextModel = envutil.String("GEMINI_TEXT_MODEL", cfg.TextModel)
	cfg.TTSModel = envutil.String("GEMINI_TTS_MODEL", cfg.TTSModel)
	cfg.Timeout = envutil.Duration("GEMINI_TIMEOUT_SECONDS", cfg.Timeout)
	return cfg
}

type Client struct {
	log        *logger.Logger
	apiKey     string
	baseURL    string
	textModel  string
	ttsModel   string
	httpClient *http.Client
}

// New never fails on a missing key; every call does instead.
func New(baseLog *logger.Logger, cfg Config) *Client {
	c := &Client{
		log:       baseLog.With("client", "Gemini"),
		apiKey:    strings.TrimSpace(cfg.APIKey),
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		textModel: strings.TrimSpace(cfg.TextModel),
		ttsModel:  strings.TrimSpace(cfg.TTSModel),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.textModel == "" {
		c.textModel = DefaultTextModel
	}
	if c.ttsModel == "" {
		c.ttsModel = DefaultTTSModel
	}
	if c.apiKey == "" {
		c.log.Warn("GEMINI_API_KEY not set; simplify and read-aloud will fail")
	}
	return c
}

func SimplifyPrompt(text string, lang domain.Language) string {
	return "Simplify the following academic text for a student. Keep it professional but use clearer, more accessible language. Preserve all key facts. Respond in " +
		lang.DisplayName() + ".\n\nText: " + text
}

// Voice picks the prebuilt voice for lang.
func Voice(lang domain.Language) string {
	if lang == domain.LanguageBahasaMalaysia {
		return "Kore"
	}
	return "Puck"
}

// Simplify rewrites text in lang. An empty answer yields text unchanged.
func (c *Client) Simplify(ctx context.Context, text string, lang domain.Language) (string, error) {
	req := generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: SimplifyPrompt(text, lang)}}}},
		GenerationConfig: &generationConfig{Temperature: floatPtr(simplifyTemperature)},
	}
	var resp generateResponse
	if err := c.generate(ctx, "simplify", c.textModel, req, &resp); err != nil {
		return "", err
	}
	out := resp.text()
	if out == "" {
		return text, nil
	}
	return out, nil
}

// Speak synthesizes text in lang's voice and returns the decoded PCM clip.
func (c *Client) Speak(ctx context.Context, text string, lang domain.Language) (pcm.Clip, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: "Say clearly: " + text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: Voice(lang)}},
			},
		},
	}
	var resp generateResponse
	if err := c.generate(ctx, "speak", c.ttsModel, req, &resp); err != nil {
		return pcm.Clip{}, err
	}
	data := resp.inlineAudio()
	if data == "" {
		return pcm.Clip{}, ErrNoAudio
	}
	return pcm.Decode(data)
}

func (c *Client) generate(ctx context.Context, op, model string, body any, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	ctx, span := otel.Tracer("inclusing/gemini").Start(ctx, "gemini."+op)
	defer span.End()
	span.SetAttributes(attribute.String("gemini.model", model))

	start := time.Now()
	path := "/v1beta/models/" + url.PathEscape(model) + ":generateContent"
	_, raw, err := c.doOnce(ctx, http.MethodPost, path, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn("Gemini call failed", "op", op, "model", model, "error", err, "elapsed", time.Since(start))
		return err
	}
	if uErr := json.Unmarshal(raw, out); uErr != nil {
		return fmt.Errorf("gemini decode error: %w", uErr)
	}
	c.log.Debug("Gemini call done", "op", op, "model", model, "elapsed", time.Since(start))
	return nil
}

// doOnce performs a single attempt; the pipeline never retries.
func (c *Client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func floatPtr(v float64) *float64 { return &v }
