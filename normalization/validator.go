package normalization

import (
	"encoding/json"
)

// Candidate proposta de cadastro (nome + atributos) ainda não persistida.
// Só vira registro de catálogo depois da confirmação humana.
type Candidate struct {
	StandardName string       `json:"standard_name"`
	Attributes   AttributeSet `json:"attributes"`
}

// CandidateValidator concilia a proposta do oráculo com os campos detectados
// localmente. Fronteira de confiança do sistema: o nome proposto pelo oráculo
// é sempre descartado e re-derivado dos atributos conciliados; os atributos do
// oráculo valem como base e os campos detectados só preenchem lacunas.
type CandidateValidator struct {
	synthesizer *NameSynthesizer
}

// NewCandidateValidator cria um novo validador de candidatos
func NewCandidateValidator() *CandidateValidator {
	return &CandidateValidator{
		synthesizer: NewNameSynthesizer(),
	}
}

// Validate monta o candidato final a partir do payload bruto do oráculo.
// Devolve nil se o payload não puder ser interpretado como um objeto JSON —
// nunca se emite registro parcial de entrada malformada.
func (cv *CandidateValidator) Validate(raw []byte, detected DetectedFields, category, description string) *Candidate {
	if len(raw) == 0 {
		return nil
	}

	// O payload precisa ser ao menos um objeto JSON; campos internos com
	// forma errada valem como ausentes, não como falha
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	// "null" decodifica sem erro para um mapa nil; também não é um objeto
	if payload == nil {
		return nil
	}

	attrs := make(AttributeSet)
	if rawAttrs, ok := payload["attributes"]; ok {
		var values map[string]any
		if err := json.Unmarshal(rawAttrs, &values); err == nil {
			// O oráculo não é confiável quanto ao tipo: só valores string entram
			for key, value := range values {
				if s, ok := value.(string); ok {
					attrs[key] = s
				}
			}
		}
	}

	// Conciliação assimétrica: valor do oráculo vence quando presente,
	// campo detectado localmente só preenche lacuna
	for key, value := range detected {
		if _, exists := attrs[key]; !exists {
			attrs[key] = value
		}
	}

	// Conjunto final sempre contém todas as chaves esperadas
	for _, key := range ExpectedKeys {
		if _, exists := attrs[key]; !exists {
			attrs[key] = ""
		}
	}

	return &Candidate{
		StandardName: cv.synthesizer.Synthesize(category, description, attrs),
		Attributes:   attrs,
	}
}
