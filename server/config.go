package server

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config configuração do servidor, carregada de variáveis de ambiente
type Config struct {
	// Servidor
	Port string

	// Dados
	InventoryPath  string
	CategoriesPath string
	StorageBackend string
	DatabasePath   string

	// Oráculo generativo
	GeminiAPIKey string
	GeminiModel  string

	// Connection pooling do backend SQLite
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Quantidade de exemplos de estilo enviados ao oráculo
	StyleExampleLimit int
}

// LoadConfig carrega a configuração das variáveis de ambiente
func LoadConfig() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}

	config := &Config{
		// Servidor
		Port: getEnv("SERVER_PORT", "8080"),

		// Dados
		InventoryPath:  getEnv("INVENTORY_PATH", "standard-inventory.json"),
		CategoriesPath: getEnv("CATEGORIES_PATH", "categories.json"),
		StorageBackend: getEnv("STORAGE_BACKEND", "json"),
		DatabasePath:   getEnv("DATABASE_PATH", "catalogo.db"),

		// Oráculo
		GeminiAPIKey: apiKey,
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		// Connection pooling
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		// Exemplos de estilo
		StyleExampleLimit: getEnvInt("STYLE_EXAMPLE_LIMIT", 3),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Validate valida a configuração
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}

	if c.InventoryPath == "" {
		return fmt.Errorf("inventory path is required")
	}

	if c.CategoriesPath == "" {
		return fmt.Errorf("categories path is required")
	}

	if c.StorageBackend != "json" && c.StorageBackend != "sqlite" {
		return fmt.Errorf("storage backend must be json or sqlite, got %q", c.StorageBackend)
	}

	if c.StorageBackend == "sqlite" && c.DatabasePath == "" {
		return fmt.Errorf("database path is required for sqlite backend")
	}

	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max open connections must be greater than 0")
	}

	if c.MaxIdleConns <= 0 {
		return fmt.Errorf("max idle connections must be greater than 0")
	}

	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max idle connections cannot be greater than max open connections")
	}

	if c.StyleExampleLimit < 0 {
		return fmt.Errorf("style example limit cannot be negative")
	}

	return nil
}

// getEnv lê uma variável de ambiente com valor padrão
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt lê uma variável de ambiente como int com valor padrão
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration lê uma variável de ambiente como Duration com valor padrão
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
