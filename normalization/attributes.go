// Package normalization implementa o núcleo determinístico do assistente de
// cadastro de insumos. Componentes principais:
//   - FieldExtractor: extração de atributos técnicos por expressões regulares
//   - NameSynthesizer: montagem do nome padronizado a partir dos atributos
//   - CandidateValidator: conciliação da proposta do oráculo com os campos detectados
//   - SimilarityMatcher: busca de registros equivalentes no catálogo existente
package normalization

// Chaves canônicas do conjunto de atributos de um insumo
const (
	AttrMarca             = "Marca"
	AttrModelo            = "Modelo"
	AttrPolos             = "Polos"
	AttrCorrenteNominal   = "Corrente Nominal"
	AttrIP                = "IP"
	AttrTensao            = "Tensão"
	AttrObservacoes       = "Observações"
	AttrCapacidadeRuptura = "Capacidade de Ruptura"
)

// ExpectedKeys lista ordenada das chaves que todo AttributeSet final deve conter.
// Chaves extras vindas do oráculo são preservadas mas não validadas.
var ExpectedKeys = []string{
	AttrMarca,
	AttrModelo,
	AttrPolos,
	AttrCorrenteNominal,
	AttrIP,
	AttrTensao,
	AttrObservacoes,
	AttrCapacidadeRuptura,
}

// AttributeSet mapa chave→valor dos atributos técnicos de um insumo.
// String vazia significa "desconhecido"; chave ausente só ocorre antes da validação.
type AttributeSet map[string]string

// DetectedFields subconjunto de atributos extraído diretamente do texto bruto,
// independente do oráculo. Ausência de chave significa "não detectado" — nunca
// se grava string vazia aqui, para distinguir de "detectado vazio".
type DetectedFields map[string]string

// Clone devolve uma cópia independente do conjunto de atributos
func (a AttributeSet) Clone() AttributeSet {
	out := make(AttributeSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
