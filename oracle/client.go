// Package oracle encapsula o oráculo generativo usado para classificar
// descrições e propor itens padronizados. O cliente trata o serviço como uma
// fonte não confiável: respostas voltam como bytes brutos e a validação
// semântica acontece no núcleo.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultModel modelo generativo usado quando nenhum é configurado
const DefaultModel = "gemini-2.5-flash"

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Oracle contrato consumido pelo servidor e pela CLI. Propose devolve o
// payload bruto do oráculo; quem decide o que aproveitar é o validador.
type Oracle interface {
	Classify(ctx context.Context, description string, categories []string) (string, error)
	Propose(ctx context.Context, description, category string, styleExamples []string) ([]byte, error)
}

// breakerState estado do circuit breaker
type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// circuitBreaker proteção contra falhas em cascata quando o serviço degrada
type circuitBreaker struct {
	mu               sync.Mutex
	state            breakerState
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
	timeout          time.Duration
	lastFailureTime  time.Time
}

// geminiRequest corpo da chamada generateContent
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse resposta da chamada generateContent
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// GeminiClient cliente HTTP do oráculo com rate limiting, circuit breaker e
// cache de respostas
type GeminiClient struct {
	apiKey         string
	baseURL        string
	model          string
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *circuitBreaker
	cache          *ResponseCache
}

// GeminiOption ajuste opcional do cliente
type GeminiOption func(*GeminiClient)

// WithBaseURL troca o endpoint do serviço, usado nos testes
func WithBaseURL(baseURL string) GeminiOption {
	return func(c *GeminiClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient troca o cliente HTTP subjacente
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(c *GeminiClient) {
		c.httpClient = client
	}
}

// WithCacheTTL ajusta a validade do cache de respostas
func WithCacheTTL(ttl time.Duration) GeminiOption {
	return func(c *GeminiClient) {
		c.cache = NewResponseCache(ttl, 1000)
	}
}

// NewGeminiClient cria o cliente do oráculo generativo
func NewGeminiClient(apiKey, model string, opts ...GeminiOption) *GeminiClient {
	if model == "" {
		model = DefaultModel
	}

	// Rate limiter: 1 requisição/seg com burst de 5, protege a quota da API
	limiter := rate.NewLimiter(rate.Every(time.Second), 5)

	// Circuit breaker: 5 falhas seguidas abrem; 30s até half-open;
	// 2 sucessos fecham de novo
	breaker := &circuitBreaker{
		state:            stateClosed,
		failureThreshold: 5,
		successThreshold: 2,
		timeout:          30 * time.Second,
	}

	client := &GeminiClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		rateLimiter:    limiter,
		circuitBreaker: breaker,
		cache:          NewResponseCache(1*time.Hour, 1000),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Classify devolve a categoria escolhida pelo oráculo para a descrição.
// O resultado é o texto da resposta sem espaços nas pontas; a checagem de
// pertinência à lista fica no chamador.
func (c *GeminiClient) Classify(ctx context.Context, description string, categories []string) (string, error) {
	prompt := buildClassifyPrompt(description, categories)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}

// Propose devolve o payload JSON bruto proposto pelo oráculo para a descrição.
// Cercas de markdown são removidas; nenhuma outra validação acontece aqui.
func (c *GeminiClient) Propose(ctx context.Context, description, category string, styleExamples []string) ([]byte, error) {
	prompt := buildProposePrompt(description, category, styleExamples)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return []byte(cleanJSONResponse(text)), nil
}

// generate executa uma chamada generateContent com cache, rate limiting e
// circuit breaker
func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	if cached, ok := c.cache.Get(prompt); ok {
		return cached, nil
	}

	if !c.circuitBreaker.canProceed() {
		return "", fmt.Errorf("circuit breaker is open (state: %s), oracle calls are temporarily blocked", c.circuitBreaker.getState())
	}

	request := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.circuitBreaker.recordFailure()
		return "", fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.circuitBreaker.recordFailure()
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.circuitBreaker.recordFailure()
		return "", fmt.Errorf("oracle returned status %d: %s", resp.StatusCode, string(body))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		c.circuitBreaker.recordFailure()
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if geminiResp.Error != nil {
		c.circuitBreaker.recordFailure()
		return "", fmt.Errorf("oracle error: %s (status: %s)", geminiResp.Error.Message, geminiResp.Error.Status)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		c.circuitBreaker.recordFailure()
		return "", fmt.Errorf("no candidates in response")
	}

	c.circuitBreaker.recordSuccess()

	text := geminiResp.Candidates[0].Content.Parts[0].Text
	c.cache.Set(prompt, text)

	return text, nil
}

// cleanJSONResponse remove cercas de markdown em volta do JSON
func cleanJSONResponse(content string) string {
	cleaned := strings.TrimSpace(content)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	}
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSuffix(cleaned, "```")
	}

	return strings.TrimSpace(cleaned)
}

// CacheStats estatísticas do cache de respostas do cliente
func (c *GeminiClient) CacheStats() CacheStats {
	return c.cache.Stats()
}

// BreakerState estado atual do circuit breaker, para logs
func (c *GeminiClient) BreakerState() string {
	return c.circuitBreaker.getState()
}

// --- circuit breaker ---

// canProceed decide se uma chamada pode seguir para o serviço
func (cb *circuitBreaker) canProceed() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return true

	case stateOpen:
		if time.Since(cb.lastFailureTime) > cb.timeout {
			cb.state = stateHalfOpen
			cb.successCount = 0
			return true
		}
		return false

	case stateHalfOpen:
		return true

	default:
		return false
	}
}

// recordSuccess registra uma chamada bem-sucedida
func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		cb.failureCount = 0

	case stateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = stateClosed
			cb.failureCount = 0
			cb.successCount = 0
		}
	}
}

// recordFailure registra uma chamada com falha
func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = time.Now()

	switch cb.state {
	case stateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.state = stateOpen
		}

	case stateHalfOpen:
		cb.state = stateOpen
		cb.failureCount = cb.failureThreshold
		cb.successCount = 0
	}
}

// getState estado do breaker em texto
func (cb *circuitBreaker) getState() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
