package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalogador/catalog"
	"catalogador/oracle"
	"catalogador/server"
)

func main() {
	log.Println("Iniciando servidor de catalogação...")

	// Carrega a configuração
	config, err := server.LoadConfig()
	if err != nil {
		log.Fatalf("Erro ao carregar configuração: %v", err)
	}

	if config.GeminiAPIKey == "" {
		log.Println("Aviso: GEMINI_API_KEY não definido, chamadas ao oráculo vão falhar")
	}

	// Carrega a lista de categorias válidas
	categories, err := catalog.LoadCategories(config.CategoriesPath)
	if err != nil {
		log.Fatalf("Erro ao carregar categorias: %v", err)
	}
	log.Printf("Categorias carregadas: %d", len(categories))

	// Seleciona o backend de persistência
	var store catalog.Store
	switch config.StorageBackend {
	case "sqlite":
		sqliteStore, err := catalog.NewSQLiteStoreWithConfig(config.DatabasePath, catalog.DBConfig{
			MaxOpenConns:    config.MaxOpenConns,
			MaxIdleConns:    config.MaxIdleConns,
			ConnMaxLifetime: config.ConnMaxLifetime,
		})
		if err != nil {
			log.Fatalf("Erro ao abrir banco de catálogo: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		log.Printf("Backend SQLite: %s", config.DatabasePath)
	default:
		store = catalog.NewJSONStore(config.InventoryPath)
		log.Printf("Backend JSON: %s", config.InventoryPath)
	}

	// Cria o cliente do oráculo generativo
	oracleClient := oracle.NewGeminiClient(config.GeminiAPIKey, config.GeminiModel)

	// Cria o servidor
	srv, err := server.NewServer(config, store, oracleClient, categories)
	if err != nil {
		log.Fatalf("Erro ao criar servidor: %v", err)
	}

	// Inicia o servidor em goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("Erro ao iniciar servidor: %v", err)
		}
	}()

	log.Printf("Servidor rodando na porta %s", config.Port)
	log.Println("Para encerrar, pressione Ctrl+C")

	// Log periódico das contagens do catálogo
	statsDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				total := 0
				for _, count := range srv.CountByCategory() {
					total += count
				}
				log.Printf("Catálogo: %d registros", total)
			case <-statsDone:
				return
			}
		}
	}()

	// Aguarda sinal de encerramento
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	close(statsDone)
	log.Println("Sinal de encerramento recebido, parando o servidor...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Erro ao parar servidor: %v", err)
	} else {
		log.Println("Servidor encerrado")
	}
}
