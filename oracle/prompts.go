package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// standardizationGuide guia de padronização enviado ao oráculo. As regras de
// pontuação e de modelo vivem apenas aqui; o núcleo determinístico tem seu
// próprio formato canônico.
const standardizationGuide = `
Guia de Padronização de Nomes e Atributos

Regras Gerais:
- Todos os nomes devem estar em MAIÚSCULAS.
- Se o código/modelo do fabricante não for encontrado, use " - (SEM MODELO)".
- Unidades devem ser abreviadas conforme o padrão técnico (ex: A para Ampères, V para Volts, kW, kVA).
- Marcas devem aparecer apenas se forem parte do nome comercial; caso contrário, mover para atributos.
- Nunca inclua o código NCM no nome padronizado. Se for mencionado, extraia-o para os atributos.
- Nunca inclua o código de barras no nome padronizado. Se for mencionado, extraia-o para os atributos.
- Nunca inclua o código de compra do fabricante no nome padronizado. Se for mencionado, extraia-o para os atributos.
- Para Disjuntores, a corrente e o número de polos devem ser escritos em sequência, sem vírgula entre eles (ex: '6A BIPOLAR')

Formato de Saída (exigido):
Retorne APENAS um objeto JSON com as chaves:
{
    "standard_name": "...",
    "attributes": {
        "Marca": "...",
        "Modelo": "...",
        "Polos": "...",
        "Corrente Nominal": "...",
        "IP": "...",
        "Tensão": "...",
        "Observações": "..."
    }
}

Regras de Extração de Atributos:
- Sempre tente extrair Marca e Modelo (separados).
- Corrente nominal deve ficar em formato "<valor>A" (ex: "125A").
- Tensão deve ser expressa como "<valor>V" ou faixa (ex: "230V").
- Grau de proteção como "IP67" quando mencionado.
- Polos para disjuntores e outros: padronizar como "MONOPOLAR", "BIPOLAR", "TRIPOLAR", "TETRAPOLAR".
- Para Plugues e tomadas, "1P+T+N", "2P+T+N", "3P+T+N", etc.

Comportamento diante de incerteza:
- Se algum atributo não puder ser identificado com confiança, deixe-o ausente no campo attributes.
- Nunca retorne texto explicativo fora do objeto JSON.
- A Descrição Padronizada deve obrigatoriamente terminar com o nome do modelo do produto (ex: SAK 4 EN, Polaris, A3T-2.5) e nunca com o código numérico de compra do fabricante.
- Se um modelo alfanumérico específico não for evidente, o nome da linha do produto (ex: Polaris) deverá ser usado como modelo.
`

// buildClassifyPrompt monta o prompt de classificação em categoria única
func buildClassifyPrompt(description string, categories []string) string {
	list, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		list = []byte("[]")
	}

	return fmt.Sprintf(`
Analise a descrição do insumo fornecida pelo usuário e classifique-a em UMA das categorias a seguir.
Retorne APENAS o nome exato da categoria correspondente da lista. Não adicione nenhuma outra palavra.

Descrição do Usuário: "%s"

Lista de Categorias Válidas:
%s

Categoria Escolhida:
`, description, string(list))
}

// buildProposePrompt monta o prompt de proposta de item padronizado.
// Os exemplos de estilo são nomes já catalogados na mesma categoria.
func buildProposePrompt(description, category string, styleExamples []string) string {
	var examplesSection string
	if len(styleExamples) > 0 {
		var b strings.Builder
		for _, example := range styleExamples {
			fmt.Fprintf(&b, "- %s\n", example)
		}
		examplesSection = fmt.Sprintf(`
### Exemplos de Itens Já Cadastrados Nesta Categoria
Use os seguintes itens como referência de estilo e formatação:
%s`, b.String())
	}

	return fmt.Sprintf(`
Você é um especialista em catalogação de materiais industriais. Sua tarefa é criar uma **nova e única** entrada padronizada a partir da descrição de um usuário, usando um guia de regras e exemplos existentes como referência de **formato**.

### GUIA DE PADRONIZAÇÃO
%s
%s
### DADOS DE ENTRADA
Categoria: "%s"
Descrição do Usuário: "%s"

### FLUXO DE TRABALHO OBRIGATÓRIO

**PASSO 1: COLETA E VERIFICAÇÃO DE DADOS**
- Analise a "Descrição do Usuário" e consolide os atributos técnicos relevantes, como corrente, polos, curva, e o código exato do Modelo do fabricante.

**PASSO 2: GERAÇÃO DO standard_name**
- Encontre o template da categoria no GUIA DE PADRONIZAÇÃO e preencha os campos com os dados consolidados.
- Os separadores definidos no template são fixos e obrigatórios.
- Se uma informação para um campo do template não for encontrada, omita o campo E a vírgula que o precede.
- Apenas para as categorias que contenham "DISJUNTOR" ou "MINIDISJUNTOR", a Corrente e os Polos devem ser agrupados SEM VÍRGULA entre eles (ex: "20A BIPOLAR").
- O nome deve ser INTEIRAMENTE EM LETRAS MAIÚSCULAS e DEVE terminar com " - [MODELO]".

**PASSO 3: MONTAGEM FINAL DO JSON**
- Crie o objeto attributes com todos os dados técnicos coletados no Passo 1.
- Monte a saída em um único objeto JSON com standard_name e attributes.
- Garanta consistência total entre o nome e o objeto de atributos.

### JSON DE SAÍDA:
`, standardizationGuide, examplesSection, category, description)
}
