package main

import (
	"context"
	"log"
	"os"
	"time"

	"citizen-helpdesk-be/internal/entity"
	"citizen-helpdesk-be/internal/repository/unitofwork"
	"citizen-helpdesk-be/pkg/database"
	"citizen-helpdesk-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type seedDocument struct {
	Title     string
	SourceUrl string
	Category  string
	Chunks    []string
}

// Starter knowledge base for a fresh install. Real deployments replace this
// with their own ingestion pipeline; these fixtures make the answer flow
// testable end to end.
var seedDocuments = []seedDocument{
	{
		Title:     "Passport Renewal",
		SourceUrl: "https://services.example.gov/passport-renewal",
		Category:  "documents",
		Chunks: []string{
			"To renew a passport you need your current passport, one recent photograph, and a completed renewal form. Renewals are handled at any citizen service office without an appointment.",
			"Passport renewal takes 10 working days in the standard procedure. An express procedure of 3 working days is available for double the standard fee.",
			"A passport that expired more than five years ago cannot be renewed. In that case a new application must be submitted, including proof of citizenship.",
		},
	},
	{
		Title:     "Parking Permits for Residents",
		SourceUrl: "https://services.example.gov/parking-permits",
		Category:  "transport",
		Chunks: []string{
			"Residents of controlled parking zones can apply for an annual parking permit. The permit is tied to the vehicle registration and the registered home address.",
			"A resident parking permit costs 60 per year for the first vehicle and 120 per year for each additional vehicle in the same household.",
		},
	},
	{
		Title:     "Registering a Change of Address",
		SourceUrl: "https://services.example.gov/address-change",
		Category:  "civil-registry",
		Chunks: []string{
			"A change of address must be reported within 15 days of moving. The report can be filed online with a digital identity or in person at the civil registry.",
			"When reporting a change of address for a family, one adult member can file for the whole household. Identity documents of all household members must be attached.",
		},
	},
	{
		Title:     "Waste Collection Schedule",
		SourceUrl: "https://services.example.gov/waste-collection",
		Category:  "environment",
		Chunks: []string{
			"Household waste is collected weekly; the collection day depends on the district. Bulky waste pickups must be booked separately and are free twice per year.",
		},
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}
	ollamaModel := os.Getenv("OLLAMA_EMBEDDING_MODEL")
	if ollamaModel == "" {
		ollamaModel = "nomic-embed-text"
	}
	embeddingProvider := embedding.NewOllamaProvider(ollamaBaseURL, ollamaModel)

	uowFactory := unitofwork.NewRepositoryFactory(db)

	log.Println("Seeding knowledge base...")
	for _, doc := range seedDocuments {
		if err := seedOne(uowFactory, embeddingProvider, doc); err != nil {
			log.Printf("Error seeding %q: %v", doc.Title, err)
		}
	}
	log.Println("Knowledge base seeding completed.")
}

func seedOne(uowFactory unitofwork.RepositoryFactory, provider embedding.EmbeddingProvider, doc seedDocument) error {
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.KbDocumentRepository().FindAll(ctx)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.Title == doc.Title {
			log.Printf("Document %q already exists, skipping...", doc.Title)
			return nil
		}
	}

	document := &entity.KbDocument{
		Id:          uuid.New(),
		Title:       doc.Title,
		SourceUrl:   doc.SourceUrl,
		Category:    doc.Category,
		TotalChunks: len(doc.Chunks),
		CreatedAt:   time.Now(),
	}

	chunks := make([]*entity.KbChunk, 0, len(doc.Chunks))
	for i, content := range doc.Chunks {
		res, err := provider.Generate(content, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return err
		}
		chunks = append(chunks, &entity.KbChunk{
			Id:             uuid.New(),
			DocumentId:     document.Id,
			Content:        content,
			EmbeddingValue: res.Embedding.Values,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.KbDocumentRepository().Create(ctx, document); err != nil {
		return err
	}
	if err := uow.KbChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	log.Printf("Seeded %q with %d chunks", doc.Title, len(doc.Chunks))
	return nil
}
