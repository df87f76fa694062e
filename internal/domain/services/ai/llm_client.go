package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tanabbah/pkg/logger"
)

// LLMClient provides access to large language model APIs
type LLMClient struct {
	httpClient *http.Client
	logger     *logger.Logger
	config     LLMConfig
}

// LLMConfig holds LLM client configuration
type LLMConfig struct {
	Provider     string // claude, openai
	APIKey       string
	Model        string // claude-3-haiku-20240307, gpt-4o-mini, etc.
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
	Timeout      time.Duration
}

// NewLLMClient creates a new LLM client
func NewLLMClient(cfg LLMConfig, log *logger.Logger) *LLMClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2 // Low temperature for factual analysis
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Model == "" {
		if cfg.Provider == "claude" {
			cfg.Model = "claude-3-haiku-20240307"
		} else {
			cfg.Model = "gpt-4o-mini"
		}
	}

	return &LLMClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.WithComponent("llm-client"),
		config: cfg,
	}
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response
type CompletionResponse struct {
	Content    string `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// llmContextAnalysis is the JSON shape the model is instructed to emit
type llmContextAnalysis struct {
	IsPhishing   bool     `json:"is_phishing"`
	Confidence   float64  `json:"confidence"`
	Reasoning    string   `json:"reasoning"`
	RedFlags     []string `json:"red_flags"`
	ContextScore float64  `json:"context_score"`
}

// AnalyzeContext sends the message to the configured model and parses
// its structured verdict. A parse failure is returned as an error so
// the caller can fall back to the deterministic path.
func (c *LLMClient) AnalyzeContext(ctx context.Context, message string, urls []string, trustedDomains []string) (*llmContextAnalysis, error) {
	startTime := time.Now()

	systemPrompt := c.phishingSystemPrompt(trustedDomains)
	userPrompt := c.buildContextPrompt(message, urls)

	messages := []Message{{Role: "user", Content: userPrompt}}

	var response *CompletionResponse
	var err error

	switch c.config.Provider {
	case "claude":
		response, err = c.callClaude(ctx, systemPrompt, messages)
	case "openai":
		response, err = c.callOpenAI(ctx, systemPrompt, messages)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", c.config.Provider)
	}

	if err != nil {
		return nil, err
	}

	analysis, err := c.parseLLMResponse(response.Content)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to parse LLM response")
		return nil, err
	}

	c.logger.Debug().
		Dur("elapsed", time.Since(startTime)).
		Int("tokens", response.Usage.InputTokens+response.Usage.OutputTokens).
		Msg("context analysis completed")

	return analysis, nil
}

// phishingSystemPrompt returns the system prompt for message analysis
func (c *LLMClient) phishingSystemPrompt(trustedDomains []string) string {
	if c.config.SystemPrompt != "" {
		return c.config.SystemPrompt
	}

	return fmt.Sprintf(`You are a phishing detection expert analyzing SMS and chat messages sent to users in Saudi Arabia. Messages may be in Arabic or English.

## Trusted Official Domains:
The following domains belong to legitimate Saudi government services and are SAFE: %s

## Rules:
1. A message whose links all point to trusted official domains, with no requests for passwords, OTP codes, or card details, is NOT phishing even if it mentions government services.
2. Impersonation of government services (Absher, Najiz, ministries) combined with untrusted links is a strong phishing signal.
3. Look for urgency tactics, threats of account suspension, prize claims, shortened URLs, and requests for sensitive data.
4. Confidence is how certain you are of your verdict, not a probability of phishing.

## Response Format:
Respond ONLY with valid JSON in this exact structure:
{
  "is_phishing": boolean,
  "confidence": 0-100,
  "reasoning": "brief explanation in Arabic",
  "red_flags": ["list of red flags found, in English"],
  "context_score": 0-100
}`, strings.Join(trustedDomains, ", "))
}

// buildContextPrompt builds the user prompt for message analysis
func (c *LLMClient) buildContextPrompt(message string, urls []string) string {
	var sb strings.Builder

	sb.WriteString("Analyze the following message for phishing:\n\n")
	sb.WriteString("**Message:**\n```\n")
	sb.WriteString(message)
	sb.WriteString("\n```\n")

	if len(urls) > 0 {
		sb.WriteString("\n**URLs found in message:**\n")
		for _, u := range urls {
			sb.WriteString(fmt.Sprintf("- %s\n", u))
		}
	}

	sb.WriteString("\nProvide your analysis in JSON format.")

	return sb.String()
}

// callClaude makes a request to Claude API
func (c *LLMClient) callClaude(ctx context.Context, system string, messages []Message) (*CompletionResponse, error) {
	url := "https://api.anthropic.com/v1/messages"

	claudeMessages := make([]map[string]interface{}, len(messages))
	for i, msg := range messages {
		claudeMessages[i] = map[string]interface{}{
			"role":    msg.Role,
			"content": msg.Content,
		}
	}

	reqBody := map[string]interface{}{
		"model":       c.config.Model,
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
		"system":      system,
		"messages":    claudeMessages,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Claude API error %d: %s", resp.StatusCode, string(body))
	}

	var claudeResp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
		Usage      struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return nil, err
	}

	var content string
	for _, part := range claudeResp.Content {
		if part.Type == "text" {
			content += part.Text
		}
	}

	return &CompletionResponse{
		Content:    content,
		StopReason: claudeResp.StopReason,
		Usage: struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		}{
			InputTokens:  claudeResp.Usage.InputTokens,
			OutputTokens: claudeResp.Usage.OutputTokens,
		},
	}, nil
}

// callOpenAI makes a request to OpenAI API
func (c *LLMClient) callOpenAI(ctx context.Context, system string, messages []Message) (*CompletionResponse, error) {
	url := "https://api.openai.com/v1/chat/completions"

	openAIMessages := []map[string]interface{}{
		{
			"role":    "system",
			"content": system,
		},
	}

	for _, msg := range messages {
		openAIMessages = append(openAIMessages, map[string]interface{}{
			"role":    msg.Role,
			"content": msg.Content,
		})
	}

	reqBody := map[string]interface{}{
		"model":       c.config.Model,
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
		"messages":    openAIMessages,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API error %d: %s", resp.StatusCode, string(body))
	}

	var openAIResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return nil, err
	}

	if len(openAIResp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return &CompletionResponse{
		Content:    openAIResp.Choices[0].Message.Content,
		StopReason: openAIResp.Choices[0].FinishReason,
		Usage: struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		}{
			InputTokens:  openAIResp.Usage.PromptTokens,
			OutputTokens: openAIResp.Usage.CompletionTokens,
		},
	}, nil
}

// parseLLMResponse parses the JSON response from the LLM
func (c *LLMClient) parseLLMResponse(content string) (*llmContextAnalysis, error) {
	content = strings.TrimSpace(content)

	// Handle markdown code blocks
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	// Find JSON in response
	startIdx := strings.Index(content, "{")
	endIdx := strings.LastIndex(content, "}")
	if startIdx != -1 && endIdx != -1 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	var analysis llmContextAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if analysis.Confidence < 0 || analysis.Confidence > 100 {
		return nil, fmt.Errorf("confidence out of range: %f", analysis.Confidence)
	}
	if analysis.ContextScore < 0 || analysis.ContextScore > 100 {
		return nil, fmt.Errorf("context_score out of range: %f", analysis.ContextScore)
	}

	return &analysis, nil
}

// ModelName returns the configured model identifier
func (c *LLMClient) ModelName() string {
	return c.config.Model
}
