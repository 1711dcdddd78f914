package vectorstore

import (
	"context"
	"fmt"
	"log"
	"sort"

	"coursechat/db"
	"coursechat/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/protobuf/types/known/structpb"
)

const contentNamespace = "course-content"

// SearchResults carries the three disjoint outcomes of a content search:
// an explicit error (Err non-empty), no matches, or ranked matches.
type SearchResults struct {
	Documents []string
	Metadata  []map[string]any
	Distances []float32
	Err       string
}

func ErrorResults(message string) SearchResults {
	return SearchResults{Err: message}
}

func (r SearchResults) IsEmpty() bool {
	return r.Err == "" && len(r.Documents) == 0
}

// Store combines the Pinecone content index with the Postgres course catalog.
// The catalog owns titles, links and lesson listings; Pinecone owns the
// embedded chunks.
type Store struct {
	client     *pinecone.Client
	embedder   embeddings.Embedder
	courses    db.CourseRepository
	indexName  string
	maxResults int
}

func NewStore(pineconeAPIKey, openaiAPIKey, indexName string, courses db.CourseRepository, maxResults int) (*Store, error) {
	log.Printf("[INFO] Initializing vector store")

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: pineconeAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(openaiAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	if maxResults <= 0 {
		maxResults = 5
	}

	store := &Store{
		client:     pc,
		embedder:   embedder,
		courses:    courses,
		indexName:  indexName,
		maxResults: maxResults,
	}

	log.Printf("[INFO] Vector store initialized successfully")
	return store, nil
}

// Search runs a filtered semantic search. An unresolvable course-name filter
// is reported as an error result naming the filter; infrastructure failures
// become "Search error" results. The caller never sees a raised fault.
func (s *Store) Search(ctx context.Context, query, courseName string, lessonNumber *int) SearchResults {
	var courseTitle string
	if courseName != "" {
		courseTitle = s.ResolveCourseName(ctx, courseName)
		if courseTitle == "" {
			return ErrorResults(fmt.Sprintf("No course found matching '%s'", courseName))
		}
	}

	queryEmbeddings, err := s.embedder.EmbedDocuments(ctx, []string{query})
	if err != nil {
		log.Printf("[ERROR] Failed to embed search query: %v", err)
		return ErrorResults(fmt.Sprintf("Search error: %v", err))
	}

	idxConn, err := s.contentIndex(ctx)
	if err != nil {
		log.Printf("[ERROR] Failed to connect to content index: %v", err)
		return ErrorResults(fmt.Sprintf("Search error: %v", err))
	}

	request := &pinecone.QueryByVectorValuesRequest{
		Vector:          queryEmbeddings[0],
		TopK:            uint32(s.maxResults),
		IncludeValues:   false,
		IncludeMetadata: true,
	}

	if filter := buildMetadataFilter(courseTitle, lessonNumber); filter != nil {
		filterStruct, err := structpb.NewStruct(filter)
		if err != nil {
			log.Printf("[ERROR] Failed to build metadata filter: %v", err)
			return ErrorResults(fmt.Sprintf("Search error: %v", err))
		}
		request.MetadataFilter = filterStruct
	}

	result, err := idxConn.QueryByVectorValues(ctx, request)
	if err != nil {
		log.Printf("[ERROR] Vector query failed: %v", err)
		return ErrorResults(fmt.Sprintf("Search error: %v", err))
	}

	results := SearchResults{}
	for _, match := range result.Matches {
		if match.Vector.Metadata == nil {
			continue
		}
		metadata := match.Vector.Metadata.AsMap()
		content, _ := metadata["content"].(string)
		if content == "" {
			continue
		}
		results.Documents = append(results.Documents, content)
		results.Metadata = append(results.Metadata, metadata)
		results.Distances = append(results.Distances, match.Score)
	}

	log.Printf("[INFO] Search for %q returned %d results", query, len(results.Documents))
	return results
}

// buildMetadataFilter returns the Pinecone $eq filter map for the supplied
// filters, or nil when neither filter is present.
func buildMetadataFilter(courseTitle string, lessonNumber *int) map[string]any {
	filter := map[string]any{}
	if courseTitle != "" {
		filter["course_title"] = map[string]any{"$eq": courseTitle}
	}
	if lessonNumber != nil {
		filter["lesson_number"] = map[string]any{"$eq": *lessonNumber}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

// ResolveCourseName fuzzy-matches a possibly partial course name against the
// catalog. Returns the canonical title, or "" when nothing matches.
func (s *Store) ResolveCourseName(ctx context.Context, name string) string {
	titles, err := s.courses.GetCourseTitles()
	if err != nil {
		log.Printf("[ERROR] Failed to load course titles: %v", err)
		return ""
	}

	matches := fuzzy.RankFindNormalizedFold(name, titles)
	if len(matches) == 0 {
		return ""
	}

	sort.Sort(matches)
	return matches[0].Target
}

// GetLessonLink returns the link for a lesson, or "" when the catalog has
// none recorded.
func (s *Store) GetLessonLink(ctx context.Context, courseTitle string, lessonNumber int) string {
	link, err := s.courses.GetLessonLink(courseTitle, lessonNumber)
	if err != nil {
		log.Printf("[ERROR] Failed to look up lesson link for %q lesson %d: %v", courseTitle, lessonNumber, err)
		return ""
	}
	return link
}

func (s *Store) GetAllCoursesMetadata(ctx context.Context) ([]*models.CourseMetadata, error) {
	return s.courses.GetAllCoursesMetadata()
}

func (s *Store) GetCourseStats(ctx context.Context) (*models.CourseStats, error) {
	titles, err := s.courses.GetCourseTitles()
	if err != nil {
		return nil, fmt.Errorf("failed to get course titles: %w", err)
	}
	if titles == nil {
		titles = []string{}
	}
	return &models.CourseStats{
		TotalCourses: len(titles),
		CourseTitles: titles,
	}, nil
}

// AddCourse records a course in the catalog.
func (s *Store) AddCourse(ctx context.Context, course *models.Course) error {
	if err := s.courses.UpsertCourse(course); err != nil {
		return fmt.Errorf("failed to store course %q: %w", course.Title, err)
	}
	return nil
}

// AddCourseChunks embeds and upserts content chunks into the Pinecone index.
func (s *Store) AddCourseChunks(ctx context.Context, chunks []models.CourseChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	idxConn, err := s.contentIndex(ctx)
	if err != nil {
		return err
	}

	var pineconeVectors []*pinecone.Vector
	for i, chunk := range chunks {
		metadata := map[string]any{
			"content":      chunk.Content,
			"course_title": chunk.CourseTitle,
			"chunk_index":  chunk.ChunkIndex,
		}
		if chunk.LessonNumber != nil {
			metadata["lesson_number"] = *chunk.LessonNumber
		}

		metadataStruct, err := structpb.NewStruct(metadata)
		if err != nil {
			return fmt.Errorf("failed to create metadata struct: %w", err)
		}

		pineconeVectors = append(pineconeVectors, &pinecone.Vector{
			Id:       fmt.Sprintf("%s-%d", chunk.CourseTitle, chunk.ChunkIndex),
			Values:   &vectors[i],
			Metadata: metadataStruct,
		})
	}

	batchSize := 50
	for i := 0; i < len(pineconeVectors); i += batchSize {
		end := min(i+batchSize, len(pineconeVectors))
		count, err := idxConn.UpsertVectors(ctx, pineconeVectors[i:end])
		if err != nil {
			return fmt.Errorf("failed to upsert vectors: %w", err)
		}
		log.Printf("[INFO] Upserted %d vectors (batch %d)", count, i/batchSize+1)
	}

	return nil
}

func (s *Store) contentIndex(ctx context.Context) (*pinecone.IndexConnection, error) {
	idxDesc, err := s.client.DescribeIndex(ctx, s.indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index: %w", err)
	}

	idxConn, err := s.client.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: contentNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}

	return idxConn, nil
}
