package organizer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/user/linkfind/internal/config"
	"github.com/user/linkfind/internal/extract"
)

// Summary is what the LLM says a page is about.
type Summary struct {
	Description string
	Tags        []string
}

// Summarizer generates link descriptions and tags using an LLM
type Summarizer struct {
	cfg    config.LLMConfig
	prompt string
}

func NewSummarizer(cfg config.LLMConfig) *Summarizer {
	prompt := cfg.SummaryPrompt
	if prompt == "" {
		prompt = summaryPrompt
	}
	return &Summarizer{cfg: cfg, prompt: prompt}
}

const summaryPrompt = `Analyze this saved link and provide:
1. A concise 1-2 sentence description of what this is about
2. 3-5 relevant keywords separated by commas

Format your response exactly as:
SUMMARY: <your summary>
KEYWORDS: <keyword1>, <keyword2>, <keyword3>

Title: %s

Content:
%s`

const maxContentLen = 10000

// buildPrompt fills the first two %s placeholders with title and content.
// Other % sequences are left alone. With one placeholder it receives both;
// with none, title and content are appended.
func buildPrompt(tmpl, title, content string) string {
	parts := strings.SplitN(tmpl, "%s", 3)
	switch len(parts) {
	case 1:
		return tmpl + "\n\nTitle: " + title + "\n\nContent:\n" + content
	case 2:
		return parts[0] + title + "\n\n" + content + parts[1]
	default:
		return parts[0] + title + parts[1] + content + parts[2]
	}
}

func (s *Summarizer) Summarize(ctx context.Context, title, content string) (*Summary, error) {
	prompt := buildPrompt(s.prompt, title, extract.Truncate(content, maxContentLen))

	var response string
	var err error

	switch s.cfg.Provider {
	case "anthropic":
		response, err = s.summarizeWithAnthropic(ctx, prompt)
	case "openai", "openrouter":
		response, err = s.summarizeWithOpenAI(ctx, prompt)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.cfg.Provider)
	}

	if err != nil {
		return nil, err
	}

	return parseResponse(response), nil
}

func (s *Summarizer) summarizeWithAnthropic(ctx context.Context, prompt string) (string, error) {
	apiKey := s.cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	var opts []anthropic.ClientOption
	if s.cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(s.cfg.BaseURL))
	}
	client := anthropic.NewClient(apiKey, opts...)

	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(s.cfg.Model),
		MaxTokens: 500,
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{{Type: "text", Text: &prompt}},
			},
		},
	})

	if err != nil {
		return "", err
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	return resp.Content[0].GetText(), nil
}

func (s *Summarizer) summarizeWithOpenAI(ctx context.Context, prompt string) (string, error) {
	apiKey := s.cfg.APIKey
	baseURL := s.cfg.BaseURL

	if s.cfg.Provider == "openrouter" {
		if apiKey == "" {
			apiKey = os.Getenv("OPENROUTER_API_KEY")
		}
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
	} else if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return "", fmt.Errorf("API key not set for provider %s", s.cfg.Provider)
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if len(s.cfg.Headers) > 0 {
		config.HTTPClient = &http.Client{
			Transport: &headerTransport{headers: s.cfg.Headers, base: http.DefaultTransport},
		}
	}

	client := openai.NewClientWithConfig(config)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.cfg.Model,
		MaxTokens: 500,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})

	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// headerTransport adds fixed headers, e.g. OpenRouter's HTTP-Referer.
type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

func parseResponse(response string) *Summary {
	result := &Summary{Tags: []string{}}

	lines := strings.Split(response, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "SUMMARY:") {
			result.Description = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		} else if strings.HasPrefix(line, "KEYWORDS:") {
			for _, kw := range strings.Split(strings.TrimPrefix(line, "KEYWORDS:"), ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					result.Tags = append(result.Tags, kw)
				}
			}
		}
	}

	return result
}
