package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coursechat/config"
	"coursechat/db"
	"coursechat/services/docproc"
	"coursechat/services/vectorstore"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
)

func main() {
	log.Printf("[INFO] Starting course document indexing")

	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("[ERROR] DB_URL environment variable is required")
	}
	if cfg.PineconeAPIKey == "" {
		log.Fatal("[ERROR] PINECONE_API_KEY environment variable is required")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Fatal("[ERROR] OPENAI_API_KEY environment variable is required")
	}

	docsPath := cfg.DocsPath
	if len(os.Args) > 1 {
		docsPath = os.Args[1]
	}

	courseRepo, err := db.NewPostgresCourseRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize course database: %v", err)
	}
	defer courseRepo.Close()

	if err := ensurePineconeIndex(cfg.PineconeAPIKey, cfg.PineconeIndexName); err != nil {
		log.Fatalf("[ERROR] Failed to ensure Pinecone index: %v", err)
	}

	store, err := vectorstore.NewStore(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName, courseRepo, cfg.MaxResults)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize vector store: %v", err)
	}

	existingTitles, err := courseRepo.GetCourseTitles()
	if err != nil {
		log.Fatalf("[ERROR] Failed to load existing course titles: %v", err)
	}
	indexed := make(map[string]bool, len(existingTitles))
	for _, title := range existingTitles {
		indexed[title] = true
	}

	entries, err := os.ReadDir(docsPath)
	if err != nil {
		log.Fatalf("[ERROR] Failed to read docs folder %s: %v", docsPath, err)
	}

	processor := docproc.NewProcessor(800, 100)
	ctx := context.Background()

	processed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isCourseDocument(entry.Name()) {
			continue
		}

		path := filepath.Join(docsPath, entry.Name())
		log.Printf("[INFO] Processing document %s", path)

		course, chunks, err := processor.ProcessFile(path)
		if err != nil {
			log.Printf("[ERROR] Failed to process %s: %v", path, err)
			continue
		}

		if indexed[course.Title] {
			log.Printf("[INFO] Course %q already indexed, skipping", course.Title)
			continue
		}

		if err := store.AddCourse(ctx, course); err != nil {
			log.Printf("[ERROR] Failed to store course %q: %v", course.Title, err)
			continue
		}

		if err := store.AddCourseChunks(ctx, chunks); err != nil {
			log.Printf("[ERROR] Failed to index chunks for %q: %v", course.Title, err)
			continue
		}

		log.Printf("[INFO] Indexed course %q with %d chunks", course.Title, len(chunks))
		processed++
	}

	log.Printf("[INFO] Indexing completed: %d new courses", processed)
}

func isCourseDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	default:
		return false
	}
}

func ensurePineconeIndex(apiKey, indexName string) error {
	ctx := context.Background()

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
	})
	if err != nil {
		return err
	}

	indexes, err := pc.ListIndexes(ctx)
	if err != nil {
		return err
	}

	for _, idx := range indexes {
		if idx.Name == indexName {
			log.Printf("[INFO] Index %s already exists", indexName)
			return nil
		}
	}

	log.Printf("[INFO] Creating Pinecone index: %s", indexName)
	dimension := int32(1536) // OpenAI ada-002 embedding dimension
	deletionProtection := pinecone.DeletionProtectionDisabled
	metric := pinecone.Cosine

	_, err = pc.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:               indexName,
		Dimension:          &dimension,
		Metric:             &metric,
		Cloud:              pinecone.Aws,
		Region:             "us-east-1",
		DeletionProtection: &deletionProtection,
		Tags:               &pinecone.IndexTags{"environment": "development", "project": "coursechat-indexing"},
	})
	if err != nil {
		return err
	}

	for {
		idx, err := pc.DescribeIndex(ctx, indexName)
		if err != nil {
			return err
		}
		if idx.Status.Ready {
			log.Printf("[INFO] Index %s is ready", indexName)
			return nil
		}
		log.Printf("[INFO] Waiting for index %s to be ready...", indexName)
		time.Sleep(10 * time.Second)
	}
}
