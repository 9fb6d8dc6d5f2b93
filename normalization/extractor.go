package normalization

import (
	"regexp"
	"strings"
)

// FieldRule regra de extração de um campo técnico a partir do texto bruto
type FieldRule struct {
	Key       string
	Regex     *regexp.Regexp
	Group     int // grupo de captura usado como valor (0 = match inteiro)
	Normalize func(string) string
}

// FieldExtractor extrai atributos técnicos de descrições livres.
// Puramente determinístico: sempre o primeiro match de cada campo,
// sem tentativa de resolver múltiplos candidatos.
type FieldExtractor struct {
	rules []FieldRule
}

// NewFieldExtractor cria um novo extrator com as regras padrão
func NewFieldExtractor() *FieldExtractor {
	extractor := &FieldExtractor{
		rules: make([]FieldRule, 0),
	}
	extractor.registerDefaultRules()
	return extractor
}

// registerDefaultRules registra as regras de extração padrão
func (fe *FieldExtractor) registerDefaultRules() {
	// Corrente nominal (ex: 20A, 125 A)
	fe.rules = append(fe.rules, FieldRule{
		Key:       AttrCorrenteNominal,
		Regex:     regexp.MustCompile(`\d{1,4}\s*[Aa]`),
		Normalize: upperNoSpaces,
	})

	// Tensão (ex: 230V, 127 v)
	fe.rules = append(fe.rules, FieldRule{
		Key:       AttrTensao,
		Regex:     regexp.MustCompile(`\d{2,4}\s*[Vv]`),
		Normalize: upperNoSpaces,
	})

	// Capacidade de ruptura (ex: 10kA, 4,5 kA)
	fe.rules = append(fe.rules, FieldRule{
		Key:   AttrCapacidadeRuptura,
		Regex: regexp.MustCompile(`\d+(?:[,.]\d+)?\s*[kK][aA]`),
		Normalize: func(s string) string {
			return strings.ReplaceAll(upperNoSpaces(s), ",", ".")
		},
	})

	// Grau de proteção (ex: IP67, ip 20)
	fe.rules = append(fe.rules, FieldRule{
		Key:       AttrIP,
		Regex:     regexp.MustCompile(`(?i)IP\s*\d{2}`),
		Normalize: upperNoSpaces,
	})

	// Polos/terminais (MONOPOLAR..TETRAPOLAR, 2P+T+N, 3P+T, 4P)
	fe.rules = append(fe.rules, FieldRule{
		Key:       AttrPolos,
		Regex:     regexp.MustCompile(`(?i)MONOPOLAR|BIPOLAR|TRIPOLAR|TETRAPOLAR|\dP\+T\+N|\dP\+T|\dP`),
		Normalize: canonicalPoles,
	})

	// Código NCM vira observação de texto livre (ex: "NCM: 8536.20.00")
	fe.rules = append(fe.rules, FieldRule{
		Key:   AttrObservacoes,
		Regex: regexp.MustCompile(`(?i)NCM\s*[:\-]?\s*(\d[\d.]+)`),
		Group: 1,
		Normalize: func(s string) string {
			return "NCM: " + s
		},
	})
}

// Extract extrai os campos detectáveis de uma descrição livre.
// Campos sem match são omitidos do resultado, nunca gravados vazios.
func (fe *FieldExtractor) Extract(description string) DetectedFields {
	detected := make(DetectedFields)

	for _, rule := range fe.rules {
		groups := rule.Regex.FindStringSubmatch(description)
		if groups == nil {
			continue
		}
		value := groups[rule.Group]
		if rule.Normalize != nil {
			value = rule.Normalize(value)
		}
		if value != "" {
			detected[rule.Key] = value
		}
	}

	return detected
}

// upperNoSpaces normaliza valor técnico: maiúsculas sem espaços internos
func upperNoSpaces(s string) string {
	return strings.ReplaceAll(strings.ToUpper(s), " ", "")
}

// canonicalPoles canoniza a designação de polos para a forma "<N>P".
// Formas combinadas (2P+T+N etc.) passam direto em maiúsculas sem espaços.
func canonicalPoles(raw string) string {
	p := upperNoSpaces(raw)
	switch {
	case strings.Contains(p, "MONOPOLAR"):
		return "1P"
	case strings.Contains(p, "BIPOLAR"):
		return "2P"
	case strings.Contains(p, "TRIPOLAR"):
		return "3P"
	case strings.Contains(p, "TETRAPOLAR"):
		return "4P"
	}
	return p
}
