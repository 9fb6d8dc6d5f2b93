package normalization

import (
	"math"
	"testing"

	"catalogador/catalog"
)

// TestFindMatchCatalogoVazio garante que catálogo vazio nunca devolve match
func TestFindMatchCatalogoVazio(t *testing.T) {
	matcher := NewSimilarityMatcher()

	match := matcher.FindMatch("disjuntor siemens 2p 40a", "DISJUNTORES", []catalog.Record{})
	if match != nil {
		t.Errorf("Expected nil match com catálogo vazio, got %+v", match)
	}
}

// TestFindMatchCenarioCompleto reproduz o cenário de reuso: descrição nova
// deve casar com o registro equivalente já catalogado
func TestFindMatchCenarioCompleto(t *testing.T) {
	matcher := NewSimilarityMatcher()

	records := []catalog.Record{
		{
			ID:           "rec-1",
			Category:     "DISJUNTORES",
			StandardName: "DISJUNTOR TERMOMAGNÉTICO 40A BIPOLAR - 5SX1",
			Attributes: map[string]string{
				AttrCorrenteNominal: "40A",
				AttrPolos:           "2P",
			},
			RawDescriptions: []string{"disjuntor siemens 2p 40a"},
		},
	}

	match := matcher.FindMatch("disjuntor siemens 2p 40a", "DISJUNTORES", records)
	if match == nil {
		t.Fatal("Expected match, got nil")
	}
	if match.ID != "rec-1" {
		t.Errorf("Expected match rec-1, got %s", match.ID)
	}
}

// TestFindMatchFiltroDuroPolos garante que divergência de polos desqualifica
// o registro mesmo com similaridade textual alta
func TestFindMatchFiltroDuroPolos(t *testing.T) {
	matcher := NewSimilarityMatcher()

	records := []catalog.Record{
		{
			ID:           "rec-3p",
			Category:     "DISJUNTORES",
			StandardName: "DISJUNTOR TERMOMAGNÉTICO 40A TRIPOLAR - 5SX1",
			Attributes: map[string]string{
				AttrCorrenteNominal: "40A",
				AttrPolos:           "3P",
			},
			// Descrição bruta idêntica à consulta: similaridade textual máxima
			RawDescriptions: []string{"disjuntor siemens 2p 40a"},
		},
	}

	match := matcher.FindMatch("disjuntor siemens 2p 40a", "DISJUNTORES", records)
	if match != nil {
		t.Errorf("Registro com polos divergentes nunca deveria casar, got %+v", match)
	}
}

// TestFindMatchFiltroDuroCorrente garante rejeição por corrente divergente
func TestFindMatchFiltroDuroCorrente(t *testing.T) {
	matcher := NewSimilarityMatcher()

	records := []catalog.Record{
		{
			ID:           "rec-63a",
			Category:     "DISJUNTORES",
			StandardName: "DISJUNTOR TERMOMAGNÉTICO 63A BIPOLAR - 5SX1",
			Attributes: map[string]string{
				AttrCorrenteNominal: "63A",
				AttrPolos:           "2P",
			},
			RawDescriptions: []string{"disjuntor siemens 2p 40a"},
		},
	}

	match := matcher.FindMatch("disjuntor siemens 2p 40a", "DISJUNTORES", records)
	if match != nil {
		t.Errorf("Registro com corrente divergente nunca deveria casar, got %+v", match)
	}
}

// TestFindMatchFiltroExigeAmbosOsLados garante que o filtro duro só atua
// quando a consulta detecta o campo E o registro o tem preenchido
func TestFindMatchFiltroExigeAmbosOsLados(t *testing.T) {
	matcher := NewSimilarityMatcher()

	records := []catalog.Record{
		{
			ID:           "rec-sem-polos",
			Category:     "DISJUNTORES",
			StandardName: "DISJUNTOR TERMOMAGNÉTICO 40A - 5SX1",
			Attributes: map[string]string{
				AttrCorrenteNominal: "40A",
				AttrPolos:           "",
			},
			RawDescriptions: []string{"disjuntor siemens 2p 40a"},
		},
	}

	match := matcher.FindMatch("disjuntor siemens 2p 40a", "DISJUNTORES", records)
	if match == nil {
		t.Fatal("Registro sem o atributo preenchido não deveria ser rejeitado")
	}
	if match.ID != "rec-sem-polos" {
		t.Errorf("Expected rec-sem-polos, got %s", match.ID)
	}
}

// TestFindMatchCategoriaDiferente garante o filtro por categoria
func TestFindMatchCategoriaDiferente(t *testing.T) {
	matcher := NewSimilarityMatcher()

	records := []catalog.Record{
		{
			ID:              "rec-outro",
			Category:        "TOMADAS",
			StandardName:    "DISJUNTOR TERMOMAGNÉTICO 40A BIPOLAR - 5SX1",
			Attributes:      map[string]string{},
			RawDescriptions: []string{"disjuntor siemens 2p 40a"},
		},
	}

	match := matcher.FindMatch("disjuntor siemens 2p 40a", "DISJUNTORES", records)
	if match != nil {
		t.Errorf("Registro de outra categoria nunca deveria casar, got %+v", match)
	}
}

// TestScoreRecordPenalidadeDeModelo verifica a aritmética da penalidade branda
func TestScoreRecordPenalidadeDeModelo(t *testing.T) {
	matcher := NewSimilarityMatcher()
	record := &catalog.Record{
		StandardName: "TOMADA INDUSTRIAL AZUL 32A - POLARIS",
	}

	queryNorm := normalizeSearchText("tomada industrial azul")
	queryTokens := tokenSet(queryNorm)

	base := matcher.scoreRecord(queryNorm, queryTokens, nil, record)
	penalized := matcher.scoreRecord(queryNorm, queryTokens, []string{"XJ900"}, record)
	contained := matcher.scoreRecord(queryNorm, queryTokens, []string{"32a"}, record)

	if diff := base - penalized; math.Abs(diff-modelTokenPenalty) > 1e-9 {
		t.Errorf("Penalidade aplicada = %v, want %v", diff, modelTokenPenalty)
	}
	if contained != base {
		t.Errorf("Token presente no nome não deveria penalizar: %v vs %v", contained, base)
	}
}

// TestLimiarDeAceitacao verifica a fronteira exata do limiar de 0.45
func TestLimiarDeAceitacao(t *testing.T) {
	if !acceptable(0.45) {
		t.Error("Pontuação exatamente 0.45 deveria ser aceita")
	}
	if acceptable(0.4499) {
		t.Error("Pontuação 0.4499 deveria ser rejeitada")
	}
	if !acceptable(9.0 / 20.0) {
		t.Error("Jaccard 9/20 deveria atingir o limiar")
	}
}

// TestFindMatchEmpateMantemPrimeiro garante que empates preservam a ordem de
// iteração do catálogo
func TestFindMatchEmpateMantemPrimeiro(t *testing.T) {
	matcher := NewSimilarityMatcher()

	record := catalog.Record{
		Category:        "DISJUNTORES",
		StandardName:    "DISJUNTOR TERMOMAGNÉTICO 40A BIPOLAR - 5SX1",
		Attributes:      map[string]string{AttrCorrenteNominal: "40A", AttrPolos: "2P"},
		RawDescriptions: []string{"disjuntor siemens 2p 40a"},
	}

	first := record
	first.ID = "primeiro"
	second := record
	second.ID = "segundo"

	match := matcher.FindMatch("disjuntor siemens 2p 40a", "DISJUNTORES", []catalog.Record{first, second})
	if match == nil {
		t.Fatal("Expected match, got nil")
	}
	if match.ID != "primeiro" {
		t.Errorf("Empate deveria manter o primeiro registro, got %s", match.ID)
	}
}

// TestNormalizeSearchText verifica a normalização de texto pesquisável
func TestNormalizeSearchText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"NomePadrao", "DISJUNTOR TERMOMAGNÉTICO 40A BIPOLAR - 5SX1", "disjuntor termomagnético 40a bipolar 5sx1"},
		{"PreservaMais", "Tomada 2P+T 20A", "tomada 2p+t 20a"},
		{"Pontuacao", "plugue, industrial; (azul)", "plugue industrial azul"},
		{"Vazio", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeSearchText(tt.in); got != tt.want {
				t.Errorf("normalizeSearchText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestModelLikeTokens verifica a seleção de tokens candidatos a modelo
func TestModelLikeTokens(t *testing.T) {
	tokens := modelLikeTokens("disjuntor siemens 2p 40a mdw-c20")

	want := []string{"40a", "mdw-c20"}
	if len(tokens) != len(want) {
		t.Fatalf("modelLikeTokens = %v, want %v", tokens, want)
	}
	for i, token := range want {
		if tokens[i] != token {
			t.Errorf("Token %d = %q, want %q", i, tokens[i], token)
		}
	}
}

// TestSequenceRatio verifica os extremos da similaridade de sequência
func TestSequenceRatio(t *testing.T) {
	if got := sequenceRatio("disjuntor", "disjuntor"); got != 1.0 {
		t.Errorf("Strings idênticas deveriam pontuar 1.0, got %v", got)
	}
	if got := sequenceRatio("", ""); got != 0.0 {
		t.Errorf("Strings vazias deveriam pontuar 0.0, got %v", got)
	}
	got := sequenceRatio("abc", "xyz")
	if got != 0.0 {
		t.Errorf("Strings disjuntas de mesmo tamanho deveriam pontuar 0.0, got %v", got)
	}
}
