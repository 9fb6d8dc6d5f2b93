// Package catalog define o modelo de registro do catálogo de insumos e os
// backends de persistência (arquivo JSON e SQLite) atrás de uma interface
// comum. Escritor único, last-write-wins: não há garantias transacionais
// entre processos.
package catalog

import (
	"github.com/google/uuid"
)

// Record registro persistido do catálogo. StandardName é derivado de
// (categoria, atributos) pelo sintetizador de nomes, exceto quando um humano
// sobrescreveu o nome na confirmação — a sobrescrita é final.
type Record struct {
	ID              string            `json:"id"`
	Category        string            `json:"category"`
	StandardName    string            `json:"standard_name"`
	Attributes      map[string]string `json:"attributes"`
	RawDescriptions []string          `json:"raw_descriptions_found"`
}

// Clone devolve uma cópia profunda do registro, sem compartilhar o mapa de
// atributos nem a fatia de descrições com o original
func (r Record) Clone() Record {
	clone := r
	if r.Attributes != nil {
		clone.Attributes = make(map[string]string, len(r.Attributes))
		for key, value := range r.Attributes {
			clone.Attributes[key] = value
		}
	}
	if r.RawDescriptions != nil {
		clone.RawDescriptions = append([]string(nil), r.RawDescriptions...)
	}
	return clone
}

// NewID gera um identificador único para um novo registro
func NewID() string {
	return uuid.NewString()
}

// FindByID procura um registro pelo identificador. Devolve nil se não existir.
func FindByID(records []Record, id string) *Record {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}

// ExamplesForCategory devolve até limit registros da mesma categoria, usados
// como referência de estilo para o oráculo generativo.
func ExamplesForCategory(records []Record, category string, limit int) []Record {
	if limit <= 0 {
		return nil
	}

	var examples []Record
	for _, record := range records {
		if record.Category != category {
			continue
		}
		examples = append(examples, record)
		if len(examples) >= limit {
			break
		}
	}
	return examples
}
