package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBConfig configuração do pool de conexões do backend SQLite
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLiteStore persistência do catálogo em banco SQLite. Alternativa ao
// JSONStore para inventários grandes; mesma semântica last-write-wins.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore abre (ou cria) o banco de catálogo no caminho indicado
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(dbPath, DBConfig{})
}

// NewSQLiteStoreWithConfig abre o banco com configuração de connection pooling
func NewSQLiteStoreWithConfig(dbPath string, config DBConfig) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		conn.SetMaxOpenConns(25) // Valor padrão
	}

	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(5) // Valor padrão
	}

	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute) // Valor padrão
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{conn: conn}

	if err := store.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema inicializa a tabela de registros do catálogo
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		standard_name TEXT NOT NULL,
		attributes TEXT NOT NULL DEFAULT '{}',
		raw_descriptions TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close fecha a conexão com o banco
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Load carrega todos os registros do catálogo na ordem de inserção
func (s *SQLiteStore) Load() ([]Record, error) {
	rows, err := s.conn.Query(`
		SELECT id, category, standard_name, attributes, raw_descriptions
		FROM records ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var record Record
		var attrsJSON, rawJSON string

		if err := rows.Scan(&record.ID, &record.Category, &record.StandardName, &attrsJSON, &rawJSON); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		if err := json.Unmarshal([]byte(attrsJSON), &record.Attributes); err != nil {
			record.Attributes = map[string]string{}
		}
		if err := json.Unmarshal([]byte(rawJSON), &record.RawDescriptions); err != nil {
			record.RawDescriptions = nil
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// Save substitui o conteúdo do catálogo pelos registros informados,
// em uma única transação
func (s *SQLiteStore) Save(records []Record) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (id, category, standard_name, attributes, raw_descriptions, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		attrsJSON, err := json.Marshal(record.Attributes)
		if err != nil {
			return fmt.Errorf("failed to marshal attributes for %s: %w", record.ID, err)
		}
		rawJSON, err := json.Marshal(record.RawDescriptions)
		if err != nil {
			return fmt.Errorf("failed to marshal descriptions for %s: %w", record.ID, err)
		}

		if _, err := stmt.Exec(record.ID, record.Category, record.StandardName, string(attrsJSON), string(rawJSON)); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CountByCategory devolve a quantidade de registros por categoria
func (s *SQLiteStore) CountByCategory() (map[string]int, error) {
	rows, err := s.conn.Query(`SELECT category, COUNT(*) FROM records GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[category] = count
	}

	return counts, rows.Err()
}
