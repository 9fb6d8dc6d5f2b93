package normalization

import (
	"strings"
)

// Placeholder usado quando o modelo do fabricante não foi identificado
const semModelo = "(SEM MODELO)"

// poleWords forma por extenso da designação de polos usada no nome padronizado
var poleWords = map[string]string{
	"1P": "MONOPOLAR",
	"2P": "BIPOLAR",
	"3P": "TRIPOLAR",
	"4P": "TETRAPOLAR",
}

// NameSynthesizer monta o nome padronizado de um insumo a partir da categoria,
// da descrição original e do conjunto de atributos resolvido.
// Determinístico: mesma entrada produz sempre o mesmo nome.
type NameSynthesizer struct{}

// NewNameSynthesizer cria um novo sintetizador de nomes
func NewNameSynthesizer() *NameSynthesizer {
	return &NameSynthesizer{}
}

// Synthesize constrói o nome padronizado. Pós-condição: resultado inteiramente
// em maiúsculas, com espaçamento simples, terminando em " - <MODELO>" ou
// " - (SEM MODELO)".
func (ns *NameSynthesizer) Synthesize(category, description string, attrs AttributeSet) string {
	parts := []string{ns.typePhrase(category, description)}

	// Blocos em ordem fixa; cada um só entra se o atributo de origem não for vazio
	corrente := attrs[AttrCorrenteNominal]
	if corrente == "" {
		corrente = attrs["Corrente"] // variante ocasional vinda do oráculo
	}
	if corrente != "" {
		parts = append(parts, upperNoSpaces(corrente))
	}

	if polos := poleDesignation(attrs[AttrPolos]); polos != "" {
		parts = append(parts, polos)
	}

	if tensao := attrs[AttrTensao]; tensao != "" {
		parts = append(parts, upperNoSpaces(tensao))
	}

	if capacidade := attrs[AttrCapacidadeRuptura]; capacidade != "" {
		parts = append(parts, upperNoSpaces(capacidade))
	}

	modelo := strings.TrimSpace(attrs[AttrModelo])
	if modelo == "" {
		modelo = semModelo
	}

	name := strings.Join(parts, " ") + " - " + modelo

	// Colapsa espaços e força maiúsculas como último passo
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// typePhrase decide a frase de tipo do nome por busca de palavras-chave na
// categoria e na descrição, em ordem de prioridade. Sem match, usa as duas
// primeiras palavras da descrição, ou "ITEM" se ela estiver vazia.
func (ns *NameSynthesizer) typePhrase(category, description string) string {
	td := strings.ToUpper(description)
	cat := strings.ToUpper(category)

	switch {
	case strings.Contains(td, "MINIDISJUNT") || strings.Contains(cat, "MINIDISJUNT"):
		return "MINIDISJUNTOR TERMOMAGNÉTICO"
	case strings.Contains(td, "DISJUNT") || strings.Contains(cat, "DISJUNT"):
		return "DISJUNTOR TERMOMAGNÉTICO"
	case strings.Contains(td, "TOMADA") || strings.Contains(td, "PLUG") || strings.Contains(cat, "TOMADA"):
		return "TOMADA"
	}

	words := strings.Fields(td)
	if len(words) == 0 {
		return "ITEM"
	}
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

// poleDesignation converte a designação armazenada ("1P".."4P") para a forma
// por extenso usada no nome. Valores já por extenso passam direto; qualquer
// outro valor passa sem espaços internos.
func poleDesignation(p string) string {
	p = strings.TrimSpace(strings.ToUpper(p))
	if p == "" {
		return ""
	}
	if word, ok := poleWords[p]; ok {
		return word
	}
	for _, word := range poleWords {
		if strings.Contains(p, word) {
			return p
		}
	}
	return strings.ReplaceAll(p, " ", "")
}
