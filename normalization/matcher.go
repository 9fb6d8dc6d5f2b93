package normalization

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"catalogador/catalog"
)

const (
	// matchThreshold pontuação mínima para aceitar um registro como equivalente
	matchThreshold = 0.45
	// sequenceWeight peso da similaridade de sequência na mistura de sinais
	sequenceWeight = 0.9
	// modelTokenPenalty penalidade branda por token de modelo ausente no nome
	modelTokenPenalty = 0.2
)

var (
	// Mantém letras (incluindo acentuadas latinas), dígitos, espaços e "+"
	searchCleanRegex = regexp.MustCompile(`[^a-z0-9à-ÿ\s+]+`)
	// Tokens alfanuméricos candidatos a código de modelo
	modelTokenRegex = regexp.MustCompile(`\b[A-Za-z0-9\-]{3,}\b`)
	digitRegex      = regexp.MustCompile(`\d`)
)

// SimilarityMatcher procura no catálogo um registro equivalente a uma nova
// descrição. Combina três sinais: sobreposição de tokens (Jaccard),
// similaridade de sequência contra o nome padronizado e penalidade por token
// de modelo divergente — com filtros duros por atributo detectado.
// O catálogo é somente leitura para o matcher.
type SimilarityMatcher struct {
	extractor *FieldExtractor
}

// NewSimilarityMatcher cria um novo matcher de similaridade
func NewSimilarityMatcher() *SimilarityMatcher {
	return &SimilarityMatcher{
		extractor: NewFieldExtractor(),
	}
}

// FindMatch devolve o registro da mesma categoria com maior pontuação acima do
// limiar de aceitação, ou nil quando nenhum é suficientemente similar.
// Empates mantêm o primeiro registro na ordem de iteração.
func (sm *SimilarityMatcher) FindMatch(description, category string, records []catalog.Record) *catalog.Record {
	detected := sm.extractor.Extract(description)
	modelTokens := modelLikeTokens(description)

	queryNorm := normalizeSearchText(description)
	queryTokens := tokenSet(queryNorm)

	bestScore := 0.0
	bestIndex := -1

	for i := range records {
		record := &records[i]
		if record.Category != category {
			continue
		}

		// Filtros duros: atributo detectado na consulta divergente do
		// atributo preenchido no registro desqualifica sem pontuar
		if rejectedByAttributes(detected, record.Attributes) {
			continue
		}

		score := sm.scoreRecord(queryNorm, queryTokens, modelTokens, record)
		if score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	if bestIndex >= 0 && acceptable(bestScore) {
		return &records[bestIndex]
	}
	return nil
}

// scoreRecord calcula a pontuação de um registro:
// max(jaccard, 0.9 * similaridade de sequência) - penalidade de modelo.
// Pode ficar negativa; isso apenas perde a comparação.
func (sm *SimilarityMatcher) scoreRecord(queryNorm string, queryTokens map[string]bool, modelTokens []string, record *catalog.Record) float64 {
	penalty := 0.0
	if len(modelTokens) > 0 && !anyTokenInName(modelTokens, record.StandardName) {
		penalty = modelTokenPenalty
	}

	// Texto pesquisável do registro: nome padronizado + descrições brutas
	combined := record.StandardName
	if len(record.RawDescriptions) > 0 {
		combined += " " + strings.Join(record.RawDescriptions, " ")
	}
	recordTokens := tokenSet(normalizeSearchText(combined))

	tokenScore := jaccardScore(queryTokens, recordTokens)

	// Similaridade de sequência apenas contra o nome padronizado
	sequenceScore := 0.0
	if nameNorm := normalizeSearchText(record.StandardName); nameNorm != "" {
		sequenceScore = sequenceRatio(queryNorm, nameNorm)
	}

	return math.Max(tokenScore, sequenceScore*sequenceWeight) - penalty
}

// acceptable decide se a melhor pontuação atinge o limiar de aceitação
func acceptable(score float64) bool {
	return score >= matchThreshold
}

// rejectedByAttributes aplica os filtros duros de corrente nominal e polos.
// Só rejeita quando a consulta detectou o campo E o registro o tem preenchido.
func rejectedByAttributes(detected DetectedFields, attrs map[string]string) bool {
	for _, key := range []string{AttrCorrenteNominal, AttrPolos} {
		queryValue, ok := detected[key]
		if !ok {
			continue
		}
		if recordValue := attrs[key]; recordValue != "" && queryValue != recordValue {
			return true
		}
	}
	return false
}

// normalizeSearchText normaliza texto para comparação: fold NFKC, minúsculas,
// remoção de tudo exceto letras latinas (acentuadas inclusive), dígitos,
// espaços e "+", com colapso de espaços.
func normalizeSearchText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(norm.NFKC.String(s))
	s = searchCleanRegex.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// tokenSet conjunto de tokens de um texto já normalizado
func tokenSet(normalized string) map[string]bool {
	tokens := make(map[string]bool)
	for _, token := range strings.Fields(normalized) {
		tokens[token] = true
	}
	return tokens
}

// jaccardScore sobreposição de tokens: |interseção| / |união|, 0 se ambos vazios
func jaccardScore(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range a {
		if b[token] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection

	return float64(intersection) / float64(union)
}

// sequenceRatio similaridade de sequência normalizada em [0,1] baseada em
// distância de edição: 1 - levenshtein/maxLen
func sequenceRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 0.0
	}
	ra := []rune(a)
	rb := []rune(b)
	longest := max(len(ra), len(rb))
	return 1.0 - float64(levenshteinDistance(ra, rb))/float64(longest)
}

// levenshteinDistance distância de edição entre duas sequências de runas
func levenshteinDistance(r1, r2 []rune) int {
	len1 := len(r1)
	len2 := len(r2)

	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deleção
				matrix[i][j-1]+1,      // inserção
				matrix[i-1][j-1]+cost, // substituição
			)
		}
	}

	return matrix[len1][len2]
}

// modelLikeTokens tokens alfanuméricos com pelo menos um dígito e três ou mais
// caracteres — candidatos a código de modelo na descrição da consulta
func modelLikeTokens(description string) []string {
	var tokens []string
	for _, token := range modelTokenRegex.FindAllString(description, -1) {
		if digitRegex.MatchString(token) {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// anyTokenInName verifica se algum token aparece como substring do nome
// padronizado, sem diferenciar maiúsculas
func anyTokenInName(tokens []string, standardName string) bool {
	name := strings.ToUpper(standardName)
	for _, token := range tokens {
		if strings.Contains(name, strings.ToUpper(token)) {
			return true
		}
	}
	return false
}
