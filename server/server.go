// Package server expõe a API HTTP de catalogação: sugestão de itens
// padronizados e confirmação de registros no catálogo. O servidor mantém o
// catálogo inteiro em memória e é o único escritor do backend de persistência.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"catalogador/catalog"
	"catalogador/normalization"
	"catalogador/oracle"
)

// Server servidor HTTP do catálogo
type Server struct {
	config     *Config
	store      catalog.Store
	oracle     oracle.Oracle
	categories []string

	extractor   *normalization.FieldExtractor
	synthesizer *normalization.NameSynthesizer
	validator   *normalization.CandidateValidator
	matcher     *normalization.SimilarityMatcher

	// mu protege records; escrita única na confirmação
	mu      sync.RWMutex
	records []catalog.Record

	handler    http.Handler
	httpServer *http.Server
	startTime  time.Time
}

// NewServer cria o servidor e carrega o catálogo do backend
func NewServer(config *Config, store catalog.Store, oracleClient oracle.Oracle, categories []string) (*Server, error) {
	records, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	s := &Server{
		config:      config,
		store:       store,
		oracle:      oracleClient,
		categories:  categories,
		extractor:   normalization.NewFieldExtractor(),
		synthesizer: normalization.NewNameSynthesizer(),
		validator:   normalization.NewCandidateValidator(),
		matcher:     normalization.NewSimilarityMatcher(),
		records:     records,
		startTime:   time.Now(),
	}
	s.handler = s.setupMux()
	return s, nil
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	log.Printf("Starting server on port %s", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.handler,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown encerra o servidor graciosamente
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// setupMux monta as rotas e a cadeia de middlewares, uma única vez na criação
// do servidor
func (s *Server) setupMux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/categorias", s.handleCategories)
	mux.HandleFunc("/api/registros", s.handleRecords)
	mux.HandleFunc("/api/sugerir", s.handleSuggest)

	return RecoverMiddleware(SecurityHeadersMiddleware(RequestIDMiddleware(LoggingMiddleware(mux))))
}

// ServeHTTP implementa http.Handler para uso em testes
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleHealth responde o health check com contagens do catálogo
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	total := len(s.records)
	byCategory := make(map[string]int)
	for _, record := range s.records {
		byCategory[record.Category]++
	}
	s.mu.RUnlock()

	writeJSONResponse(w, HealthResponse{
		Status:     "ok",
		Records:    total,
		Categories: len(s.categories),
		ByCategory: byCategory,
		UptimeSecs: int64(time.Since(s.startTime).Seconds()),
	}, http.StatusOK)
}

// handleCategories devolve a lista de categorias válidas, na ordem do arquivo
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSONResponse(w, s.categories, http.StatusOK)
}

// handleRecords lista o catálogo ou confirma um item
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRecords(w, r)
	case http.MethodPost:
		s.confirmRecord(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// listRecords devolve os registros, opcionalmente filtrados por categoria
func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("categoria")

	s.mu.RLock()
	records := make([]catalog.Record, 0, len(s.records))
	for _, record := range s.records {
		if category != "" && record.Category != category {
			continue
		}
		// Clone: a serialização acontece fora do lock e a confirmação
		// muta os registros vivos
		records = append(records, record.Clone())
	}
	s.mu.RUnlock()

	writeJSONResponse(w, records, http.StatusOK)
}

// handleSuggest executa o fluxo de sugestão: classificação (se necessária),
// busca por equivalente no catálogo e, na ausência de match, proposta do
// oráculo validada pelo núcleo determinístico
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		writeJSONError(w, "Description is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	category := strings.TrimSpace(req.Category)
	if category != "" && !s.validCategory(category) {
		writeJSONError(w, fmt.Sprintf("Unknown category: %s", category), http.StatusBadRequest)
		return
	}

	if category == "" {
		classified, err := s.oracle.Classify(ctx, description, s.categories)
		if err != nil {
			writeJSONError(w, fmt.Sprintf("Oracle classification failed: %v", err), http.StatusBadGateway)
			return
		}
		classified = strings.TrimSpace(classified)
		if !s.validCategory(classified) {
			writeJSONError(w, fmt.Sprintf("Oracle returned unknown category: %s", classified), http.StatusBadGateway)
			return
		}
		category = classified
	}

	records := s.snapshotRecords()

	if match := s.matcher.FindMatch(description, category, records); match != nil {
		writeJSONResponse(w, SuggestResponse{
			Category: category,
			Match:    match,
		}, http.StatusOK)
		return
	}

	detected := s.extractor.Extract(description)

	var styleExamples []string
	for _, example := range catalog.ExamplesForCategory(records, category, s.config.StyleExampleLimit) {
		styleExamples = append(styleExamples, example.StandardName)
	}

	raw, err := s.oracle.Propose(ctx, description, category, styleExamples)
	if err != nil {
		writeJSONError(w, fmt.Sprintf("Oracle proposal failed: %v", err), http.StatusBadGateway)
		return
	}

	candidate := s.validator.Validate(raw, detected, category, description)
	if candidate == nil {
		writeJSONError(w, "Oracle returned an unusable payload", http.StatusBadGateway)
		return
	}

	writeJSONResponse(w, SuggestResponse{
		Category:  category,
		Candidate: candidate,
		Detected:  map[string]string(detected),
	}, http.StatusOK)
}

// confirmRecord grava a decisão do usuário: enriquece o registro casado ou
// cria um registro novo no catálogo
func (s *Server) confirmRecord(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		writeJSONError(w, "Description is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.MatchID != "" {
		record := catalog.FindByID(s.records, req.MatchID)
		if record == nil {
			writeJSONError(w, fmt.Sprintf("Record not found: %s", req.MatchID), http.StatusNotFound)
			return
		}

		s.enrichRecord(record, description, req)

		if err := s.store.Save(s.records); err != nil {
			writeJSONError(w, fmt.Sprintf("Failed to persist catalog: %v", err), http.StatusInternalServerError)
			return
		}

		writeJSONResponse(w, ConfirmResponse{Record: record, Created: false}, http.StatusOK)
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		writeJSONError(w, "Category is required", http.StatusBadRequest)
		return
	}
	if !s.validCategory(category) {
		writeJSONError(w, fmt.Sprintf("Unknown category: %s", category), http.StatusBadRequest)
		return
	}

	attrs := make(map[string]string, len(req.Attributes))
	for key, value := range req.Attributes {
		attrs[key] = value
	}

	// Sobrescrita humana do nome é final; sem ela, o nome canônico é
	// sintetizado dos atributos
	standardName := strings.TrimSpace(req.StandardName)
	if standardName == "" {
		standardName = s.synthesizer.Synthesize(category, description, normalization.AttributeSet(attrs))
	}

	record := catalog.Record{
		ID:              catalog.NewID(),
		Category:        category,
		StandardName:    standardName,
		Attributes:      attrs,
		RawDescriptions: []string{description},
	}

	s.records = append(s.records, record)

	if err := s.store.Save(s.records); err != nil {
		writeJSONError(w, fmt.Sprintf("Failed to persist catalog: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, ConfirmResponse{Record: &record, Created: true}, http.StatusCreated)
}

// enrichRecord enriquece um registro existente em lugar: preenche atributos
// vazios, acumula a descrição bruta e aplica a sobrescrita de nome, se houver.
// Chamador segura o lock de escrita.
func (s *Server) enrichRecord(record *catalog.Record, description string, req ConfirmRequest) {
	if record.Attributes == nil {
		record.Attributes = make(map[string]string)
	}
	for key, value := range req.Attributes {
		if value != "" && record.Attributes[key] == "" {
			record.Attributes[key] = value
		}
	}

	for _, existing := range record.RawDescriptions {
		if existing == description {
			description = ""
			break
		}
	}
	if description != "" {
		record.RawDescriptions = append(record.RawDescriptions, description)
	}

	if override := strings.TrimSpace(req.StandardName); override != "" {
		record.StandardName = override
	}
}

// snapshotRecords devolve uma cópia profunda do catálogo, segura para leitura
// concorrente com a confirmação
func (s *Server) snapshotRecords() []catalog.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]catalog.Record, len(s.records))
	for i, record := range s.records {
		records[i] = record.Clone()
	}
	return records
}

// validCategory verifica se a categoria pertence à lista configurada
func (s *Server) validCategory(category string) bool {
	for _, c := range s.categories {
		if c == category {
			return true
		}
	}
	return false
}

// CountByCategory contagem de registros por categoria, para logs periódicos
func (s *Server) CountByCategory() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, record := range s.records {
		counts[record.Category]++
	}
	return counts
}
