// cadastrar roda o fluxo de catalogação uma única vez, direto no terminal:
// classifica a descrição, procura um equivalente no catálogo e, na ausência de
// match, pede uma proposta ao oráculo e imprime o candidato validado.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"catalogador/catalog"
	"catalogador/normalization"
	"catalogador/oracle"
)

func main() {
	// Parâmetros de linha de comando
	description := flag.String("descricao", "", "Descrição livre do insumo (obrigatório)")
	category := flag.String("categoria", "", "Categoria do insumo (opcional, classificada pelo oráculo se ausente)")
	inventoryPath := flag.String("inventario", "standard-inventory.json", "Caminho do arquivo de inventário")
	categoriesPath := flag.String("categorias", "categories.json", "Caminho do arquivo de categorias")
	model := flag.String("modelo", oracle.DefaultModel, "Modelo generativo do oráculo")
	save := flag.Bool("salvar", false, "Confirmar o resultado e gravar no inventário")
	flag.Parse()

	if *description == "" {
		flag.Usage()
		log.Fatal("A flag -descricao é obrigatória")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}

	categories, err := catalog.LoadCategories(*categoriesPath)
	if err != nil {
		log.Fatalf("Erro ao carregar categorias: %v", err)
	}

	store := catalog.NewJSONStore(*inventoryPath)
	records, err := store.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar inventário: %v", err)
	}
	log.Printf("Inventário carregado: %d registros", len(records))

	client := oracle.NewGeminiClient(apiKey, *model)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	chosen := *category
	if chosen == "" {
		if apiKey == "" {
			log.Fatal("GEMINI_API_KEY não definido e nenhuma -categoria informada")
		}
		chosen, err = client.Classify(ctx, *description, categories)
		if err != nil {
			log.Fatalf("Erro na classificação: %v", err)
		}
		log.Printf("Categoria classificada: %s", chosen)
	}
	if !contains(categories, chosen) {
		log.Fatalf("Categoria fora da lista: %s", chosen)
	}

	matcher := normalization.NewSimilarityMatcher()
	if match := matcher.FindMatch(*description, chosen, records); match != nil {
		fmt.Println("Registro equivalente já existe no catálogo:")
		printJSON(match)

		if *save {
			appendDescription(match, *description)
			if err := store.Save(records); err != nil {
				log.Fatalf("Erro ao gravar inventário: %v", err)
			}
			log.Printf("Descrição acumulada no registro %s", match.ID)
		}
		return
	}

	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY não definido; sem match não há como propor um item novo")
	}

	extractor := normalization.NewFieldExtractor()
	detected := extractor.Extract(*description)

	var styleExamples []string
	for _, example := range catalog.ExamplesForCategory(records, chosen, 3) {
		styleExamples = append(styleExamples, example.StandardName)
	}

	raw, err := client.Propose(ctx, *description, chosen, styleExamples)
	if err != nil {
		log.Fatalf("Erro na proposta do oráculo: %v", err)
	}

	validator := normalization.NewCandidateValidator()
	candidate := validator.Validate(raw, detected, chosen, *description)
	if candidate == nil {
		log.Fatalf("Payload do oráculo inutilizável: %s", raw)
	}

	fmt.Println("Candidato a cadastro:")
	printJSON(candidate)

	if *save {
		record := catalog.Record{
			ID:              catalog.NewID(),
			Category:        chosen,
			StandardName:    candidate.StandardName,
			Attributes:      candidate.Attributes.Clone(),
			RawDescriptions: []string{*description},
		}
		records = append(records, record)
		if err := store.Save(records); err != nil {
			log.Fatalf("Erro ao gravar inventário: %v", err)
		}
		log.Printf("Registro criado: %s", record.ID)
	}
}

// appendDescription acumula a descrição bruta no registro, sem duplicar
func appendDescription(record *catalog.Record, description string) {
	for _, existing := range record.RawDescriptions {
		if existing == description {
			return
		}
	}
	record.RawDescriptions = append(record.RawDescriptions, description)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Erro ao serializar resultado: %v", err)
	}
	fmt.Println(string(data))
}
