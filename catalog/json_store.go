package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Store contrato mínimo de persistência do catálogo consumido pelo núcleo
type Store interface {
	Load() ([]Record, error)
	Save(records []Record) error
}

// inventoryFile envelope do arquivo de inventário. Version e GeneratedAt são
// metadados preservados entre gravações.
type inventoryFile struct {
	Version     string   `json:"version"`
	GeneratedAt string   `json:"generated_at"`
	Records     []Record `json:"records"`
}

// JSONStore persistência do inventário em arquivo JSON único
type JSONStore struct {
	path string
}

// NewJSONStore cria um store sobre o arquivo de inventário indicado
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load carrega os registros do inventário. Arquivo ausente ou corrompido
// resulta em inventário vazio, nunca em erro fatal.
func (s *JSONStore) Load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []Record{}, nil
	}

	var inventory inventoryFile
	if err := json.Unmarshal(data, &inventory); err != nil {
		return []Record{}, nil
	}

	return inventory.Records, nil
}

// Save grava os registros de volta no arquivo, preservando os metadados do
// envelope existente quando houver
func (s *JSONStore) Save(records []Record) error {
	inventory := inventoryFile{Version: "1.1"}

	if data, err := os.ReadFile(s.path); err == nil {
		var existing inventoryFile
		if err := json.Unmarshal(data, &existing); err == nil && existing.Version != "" {
			inventory.Version = existing.Version
		}
	}

	inventory.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	inventory.Records = records

	data, err := json.MarshalIndent(inventory, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write inventory file: %w", err)
	}

	return nil
}

// LoadCategories carrega a lista ordenada de categorias válidas de um arquivo
// JSON. A lista é fornecida externamente e não é normalizada aqui.
func LoadCategories(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}

	var categories []string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories file: %w", err)
	}

	return categories, nil
}
