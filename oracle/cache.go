package oracle

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// cacheEntry resposta bruta do oráculo com prazo de validade
type cacheEntry struct {
	response  string
	timestamp time.Time
	expiresAt time.Time
}

// CacheStats estatísticas de uso do cache de respostas
type CacheStats struct {
	Hits    int64
	Misses  int64
	Entries int
	HitRate float64
}

// ResponseCache cache TTL de respostas do oráculo, chaveado pelo hash do
// prompt. Evita chamadas repetidas para a mesma descrição dentro da janela.
type ResponseCache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	ttl        time.Duration
	maxEntries int
	hits       int64
	misses     int64
}

// NewResponseCache cria o cache e inicia a limpeza periódica de expirados
func NewResponseCache(ttl time.Duration, maxEntries int) *ResponseCache {
	cache := &ResponseCache{
		entries:    make(map[string]*cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}

	go cache.cleanupExpired()

	return cache
}

// cacheKey chave determinística a partir do prompt completo
func cacheKey(prompt string) string {
	hash := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(hash[:])
}

// Get devolve a resposta em cache para o prompt, se ainda válida
func (c *ResponseCache) Get(prompt string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(prompt)
	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		return "", false
	}

	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		c.misses++
		return "", false
	}

	c.hits++
	return entry.response, true
}

// Set registra a resposta do oráculo para o prompt
func (c *ResponseCache) Set(prompt, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	now := time.Now()
	c.entries[cacheKey(prompt)] = &cacheEntry{
		response:  response,
		timestamp: now,
		expiresAt: now.Add(c.ttl),
	}
}

// evictOldest remove a entrada mais antiga; chamador segura o lock
func (c *ResponseCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	first := true
	for key, entry := range c.entries {
		if first || entry.timestamp.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.timestamp
			first = false
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// cleanupExpired remove periodicamente as entradas expiradas
func (c *ResponseCache) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}

// Stats devolve as estatísticas acumuladas do cache
func (c *ResponseCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return CacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entries),
		HitRate: hitRate,
	}
}

// Size quantidade de entradas vivas no cache
func (c *ResponseCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
