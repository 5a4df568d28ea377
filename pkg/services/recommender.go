package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

var ErrGeminiDisabled = errors.New("gemini is disabled: GEMINI_API_KEY is not set")

const systemInstruction = "You are a helpful neighborhood shopping assistant. " +
	"Recommend a product from the available list based on the user's history and preferences. Be brief and friendly."

// ProductInfo is the part of a product the recommender sees.
type ProductInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Recommender suggests one product for a shopper.
type Recommender interface {
	Enabled() bool
	Recommend(ctx context.Context, products []ProductInfo, history []string) (string, error)
}

type GeminiService struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

// NewGeminiService returns a service backed by the Gemini API. With an empty
// apiKey the service is returned disabled and Recommend fails with
// ErrGeminiDisabled.
func NewGeminiService(ctx context.Context, apiKey, model string, log *zap.Logger) (*GeminiService, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &GeminiService{model: model, timeout: 30 * time.Second, log: log.Named("gemini")}
	if strings.TrimSpace(apiKey) == "" {
		s.log.Warn("GEMINI_API_KEY is not set, recommendations use the default")
		return s, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	s.client = client
	return s, nil
}

func (s *GeminiService) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *GeminiService) Recommend(ctx context.Context, products []ProductInfo, history []string) (string, error) {
	if !s.Enabled() {
		return "", ErrGeminiDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(buildPrompt(products, history)), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Temperature:       genai.Ptr[float32](0.7),
	})
	if err != nil {
		s.log.Error("generate content failed", zap.String("model", s.model), zap.Error(err))
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned an empty recommendation")
	}
	s.log.Info("recommendation generated",
		zap.String("model", s.model), zap.Duration("latency", time.Since(start)))
	return text, nil
}

func buildPrompt(products []ProductInfo, history []string) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name+": "+p.Description)
	}
	if history == nil {
		history = []string{}
	}
	pj, _ := json.Marshal(names)
	hj, _ := json.Marshal(history)
	return fmt.Sprintf("Available Products: %s\nUser Past Purchases: %s\n\nWhich product should they try next and why?", pj, hj)
}
