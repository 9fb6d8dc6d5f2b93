package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// geminiHandler devolve uma resposta no formato generateContent com o texto dado
func geminiHandler(text string, calls *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)

		response := map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"parts": []map[string]any{
							{"text": text},
						},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

func TestClassify(t *testing.T) {
	var calls int32
	server := httptest.NewServer(geminiHandler("  DISJUNTORES\n", &calls))
	defer server.Close()

	client := NewGeminiClient("test-key", "", WithBaseURL(server.URL))

	category, err := client.Classify(context.Background(), "disjuntor siemens 2p 40a", []string{"DISJUNTORES", "TOMADAS"})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if category != "DISJUNTORES" {
		t.Errorf("Expected DISJUNTORES, got %q", category)
	}
}

func TestProposeRemoveCercasDeMarkdown(t *testing.T) {
	payload := `{"standard_name": "DISJUNTOR TERMOMAGNÉTICO 40A BIPOLAR - 5SX1", "attributes": {"Corrente Nominal": "40A"}}`
	var calls int32
	server := httptest.NewServer(geminiHandler("```json\n"+payload+"\n```", &calls))
	defer server.Close()

	client := NewGeminiClient("test-key", "", WithBaseURL(server.URL))

	raw, err := client.Propose(context.Background(), "disjuntor siemens 2p 40a", "DISJUNTORES", nil)
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("Resposta limpa deveria ser JSON válido: %v\n%s", err, raw)
	}
	if parsed["standard_name"] != "DISJUNTOR TERMOMAGNÉTICO 40A BIPOLAR - 5SX1" {
		t.Errorf("standard_name inesperado: %v", parsed["standard_name"])
	}
}

func TestGenerateUsaCache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(geminiHandler(`{"standard_name": "X", "attributes": {}}`, &calls))
	defer server.Close()

	client := NewGeminiClient("test-key", "", WithBaseURL(server.URL))

	ctx := context.Background()
	if _, err := client.Propose(ctx, "tomada industrial 32a", "TOMADAS", nil); err != nil {
		t.Fatalf("First propose failed: %v", err)
	}
	if _, err := client.Propose(ctx, "tomada industrial 32a", "TOMADAS", nil); err != nil {
		t.Fatalf("Second propose failed: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 chamada ao serviço, got %d", got)
	}

	stats := client.CacheStats()
	if stats.Hits != 1 {
		t.Errorf("Expected 1 cache hit, got %d", stats.Hits)
	}
}

func TestGenerateErroDeStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", "", WithBaseURL(server.URL))

	_, err := client.Classify(context.Background(), "disjuntor 20a", []string{"DISJUNTORES"})
	if err == nil {
		t.Fatal("Expected error com status 500")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("Erro deveria mencionar o status, got: %v", err)
	}
}

func TestGenerateErroDaAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`)
	}))
	defer server.Close()

	client := NewGeminiClient("bad-key", "", WithBaseURL(server.URL))

	_, err := client.Classify(context.Background(), "disjuntor 20a", []string{"DISJUNTORES"})
	if err == nil {
		t.Fatal("Expected error com erro da API")
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("Erro deveria carregar a mensagem da API, got: %v", err)
	}
}

func TestCircuitBreakerAbreAposFalhas(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", "", WithBaseURL(server.URL))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		// Descrições distintas para não reaproveitar nada
		description := fmt.Sprintf("disjuntor %d", i)
		if _, err := client.Classify(ctx, description, []string{"DISJUNTORES"}); err == nil {
			t.Fatalf("Call %d deveria falhar", i)
		}
	}

	if state := client.BreakerState(); state != "open" {
		t.Fatalf("Breaker deveria estar aberto após 5 falhas, got %s", state)
	}

	// Com o breaker aberto, a chamada falha sem alcançar o serviço
	before := atomic.LoadInt32(&calls)
	_, err := client.Classify(ctx, "disjuntor bloqueado", []string{"DISJUNTORES"})
	if err == nil {
		t.Fatal("Expected error com breaker aberto")
	}
	if !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Errorf("Erro deveria indicar breaker aberto, got: %v", err)
	}
	if after := atomic.LoadInt32(&calls); after != before {
		t.Errorf("Chamada bloqueada não deveria alcançar o serviço: %d -> %d", before, after)
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"SemCercas", `{"a": 1}`, `{"a": 1}`},
		{"CercaJSON", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"CercaSimples", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Espacos", "  {\"a\": 1}  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.in); got != tt.want {
				t.Errorf("cleanJSONResponse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResponseCacheExpiracao(t *testing.T) {
	cache := NewResponseCache(10*time.Millisecond, 10)

	cache.Set("prompt", "resposta")
	if _, ok := cache.Get("prompt"); !ok {
		t.Fatal("Entrada recém-gravada deveria estar no cache")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := cache.Get("prompt"); ok {
		t.Error("Entrada expirada não deveria ser devolvida")
	}
}

func TestResponseCacheLimiteDeEntradas(t *testing.T) {
	cache := NewResponseCache(time.Hour, 2)

	cache.Set("a", "1")
	cache.Set("b", "2")
	cache.Set("c", "3")

	if size := cache.Size(); size != 2 {
		t.Errorf("Cache deveria reter no máximo 2 entradas, got %d", size)
	}
}
