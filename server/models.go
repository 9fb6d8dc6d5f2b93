package server

import (
	"catalogador/catalog"
	"catalogador/normalization"
)

// SuggestRequest pedido de sugestão para uma descrição livre
type SuggestRequest struct {
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// SuggestResponse resposta da sugestão. Exatamente um de Match e Candidate é
// preenchido: Match quando um registro equivalente já existe, Candidate quando
// o oráculo propôs um item novo.
type SuggestResponse struct {
	Category  string                   `json:"category"`
	Match     *catalog.Record          `json:"match,omitempty"`
	Candidate *normalization.Candidate `json:"candidate,omitempty"`
	Detected  map[string]string        `json:"detected,omitempty"`
}

// ConfirmRequest confirmação de um item pelo usuário. Com MatchID, a descrição
// enriquece o registro existente; sem MatchID, um registro novo é criado.
// StandardName, quando presente, é a sobrescrita humana do nome e é final.
type ConfirmRequest struct {
	MatchID      string            `json:"match_id,omitempty"`
	Category     string            `json:"category"`
	Description  string            `json:"description"`
	StandardName string            `json:"standard_name,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// ConfirmResponse registro resultante da confirmação
type ConfirmResponse struct {
	Record  *catalog.Record `json:"record"`
	Created bool            `json:"created"`
}

// HealthResponse resposta do health check
type HealthResponse struct {
	Status     string         `json:"status"`
	Records    int            `json:"records"`
	Categories int            `json:"categories"`
	ByCategory map[string]int `json:"by_category,omitempty"`
	UptimeSecs int64          `json:"uptime_secs"`
}
