package oracle

import (
	"context"
	"sync"
)

// MockOracle implementação de Oracle para testes. As respostas são definidas
// por descrição; sem resposta definida, devolve os padrões configurados.
type MockOracle struct {
	mu sync.Mutex

	classifyResponses map[string]string
	proposeResponses  map[string][]byte
	classifyErrors    map[string]error
	proposeErrors     map[string]error

	DefaultCategory string
	DefaultPayload  []byte

	classifyCalls int
	proposeCalls  int
}

// NewMockOracle cria um mock sem respostas definidas
func NewMockOracle() *MockOracle {
	return &MockOracle{
		classifyResponses: make(map[string]string),
		proposeResponses:  make(map[string][]byte),
		classifyErrors:    make(map[string]error),
		proposeErrors:     make(map[string]error),
	}
}

// SetClassifyResponse define a categoria devolvida para uma descrição
func (m *MockOracle) SetClassifyResponse(description, category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classifyResponses[description] = category
}

// SetProposeResponse define o payload devolvido para uma descrição
func (m *MockOracle) SetProposeResponse(description string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposeResponses[description] = payload
}

// SetClassifyError define um erro de classificação para uma descrição
func (m *MockOracle) SetClassifyError(description string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classifyErrors[description] = err
}

// SetProposeError define um erro de proposta para uma descrição
func (m *MockOracle) SetProposeError(description string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposeErrors[description] = err
}

// ClassifyCalls quantidade de chamadas de classificação recebidas
func (m *MockOracle) ClassifyCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.classifyCalls
}

// ProposeCalls quantidade de chamadas de proposta recebidas
func (m *MockOracle) ProposeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proposeCalls
}

// Classify implementa Oracle
func (m *MockOracle) Classify(ctx context.Context, description string, categories []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.classifyCalls++

	if err, ok := m.classifyErrors[description]; ok {
		return "", err
	}
	if category, ok := m.classifyResponses[description]; ok {
		return category, nil
	}
	if m.DefaultCategory != "" {
		return m.DefaultCategory, nil
	}
	if len(categories) > 0 {
		return categories[0], nil
	}
	return "", nil
}

// Propose implementa Oracle
func (m *MockOracle) Propose(ctx context.Context, description, category string, styleExamples []string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.proposeCalls++

	if err, ok := m.proposeErrors[description]; ok {
		return nil, err
	}
	if payload, ok := m.proposeResponses[description]; ok {
		return payload, nil
	}
	return m.DefaultPayload, nil
}
