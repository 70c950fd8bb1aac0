//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/riskpilot-ai/riskpilot/internal/api/handlers"
	"github.com/riskpilot-ai/riskpilot/internal/cache"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
	"github.com/riskpilot-ai/riskpilot/internal/ingest"
	"github.com/riskpilot-ai/riskpilot/internal/llm"
	"github.com/riskpilot-ai/riskpilot/internal/repository"
	"github.com/riskpilot-ai/riskpilot/internal/server"
	"github.com/riskpilot-ai/riskpilot/internal/service"
	"github.com/riskpilot-ai/riskpilot/internal/testutil"
)

const embeddingDims = 384

// keywordEmbedder produces deterministic vectors: texts sharing a keyword
// land on the same axis, everything else gets a content-hashed axis. This
// makes retrieval outcomes predictable without a real embedding provider.
type keywordEmbedder struct {
	keywords []string
}

func newKeywordEmbedder(keywords ...string) *keywordEmbedder {
	return &keywordEmbedder{keywords: keywords}
}

func (e *keywordEmbedder) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, embeddingDims)
	lower := strings.ToLower(text)
	for i, kw := range e.keywords {
		if strings.Contains(lower, kw) {
			v[i] = 1
			return v, nil
		}
	}
	sum := sha256.Sum256([]byte(lower))
	axis := len(e.keywords) + int(binary.BigEndian.Uint32(sum[:4])%(embeddingDims-uint32(len(e.keywords))))
	v[axis] = 1
	return v, nil
}

// scriptedCompleter answers every completion with a fixed prefix plus the
// last message, so tests can see what reached the provider.
type scriptedCompleter struct {
	mu    sync.Mutex
	calls int
}

func (c *scriptedCompleter) CreateChatCompletion(ctx context.Context, model string, messages []domain.ChatMessage) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	last := messages[len(messages)-1]
	return fmt.Sprintf("analysis of: %s", last.Content), nil
}

// Calls reports how many completions have been requested.
func (c *scriptedCompleter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// TestEnv holds everything one end-to-end test needs.
type TestEnv struct {
	Ctx       context.Context
	Pool      *pgxpool.Pool
	Server    *httptest.Server
	Client    *http.Client
	Completer *scriptedCompleter
	pgC       *testutil.PostgresContainer
	redisC    *testutil.RedisContainer
}

// SetupTestEnv starts pgvector and redis containers and serves the full
// router in-process over real repositories, with fake LLM clients.
func SetupTestEnv(t *testing.T) *TestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	redisC := testutil.NewRedisContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	responseCache, err := cache.NewFromURL(ctx, redisC.URL(), time.Hour)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	completer := &scriptedCompleter{}
	completionClient := llm.NewCompletionClientWithAPI(completer, "")
	embeddingClient := llm.NewEmbeddingClientWithAPI(
		newKeywordEmbedder("alice", "hosting"), embeddingDims)

	projectRepo := repository.NewProjectRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)

	retrievalSvc := service.NewRetrievalService(embeddingClient, chunkRepo, service.DefaultRetrievalConfig())
	chatSvc := service.NewChatService(responseCache, retrievalSvc, completionClient, conversationRepo)
	analysisSvc := service.NewAnalysisService(completionClient, conversationRepo)
	pipeline := ingest.NewPipeline(chunkRepo, projectRepo, embeddingClient)

	router := server.NewRouter(server.RouterConfig{
		ProjectHandler: handlers.NewProjectHandler(projectRepo),
		ChatHandler:    handlers.NewChatHandler(projectRepo, pipeline, analysisSvc, chatSvc),
	})

	srv := httptest.NewServer(router)

	return &TestEnv{
		Ctx:       ctx,
		Pool:      pool,
		Server:    srv,
		Client:    srv.Client(),
		Completer: completer,
		pgC:       pgC,
		redisC:    redisC,
	}
}

// Teardown releases the environment's resources.
func (env *TestEnv) Teardown() {
	env.Server.Close()
	env.Pool.Close()
	_ = env.pgC.Terminate(env.Ctx)
	_ = env.redisC.Terminate(env.Ctx)
}

// PostJSON sends a JSON body and decodes the response envelope.
func (env *TestEnv) PostJSON(t *testing.T, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}

	resp, err := env.Client.Post(env.Server.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, decodeEnvelope(t, resp.Body)
}

// GetJSON fetches a path and decodes the response envelope.
func (env *TestEnv) GetJSON(t *testing.T, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := env.Client.Get(env.Server.URL + path)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, decodeEnvelope(t, resp.Body)
}

// PostMultipart uploads CSV files under the given field names.
func (env *TestEnv) PostMultipart(t *testing.T, path string, files map[string]string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".csv")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	resp, err := env.Client.Post(env.Server.URL+path, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, decodeEnvelope(t, resp.Body)
}

func decodeEnvelope(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("failed to decode response %q: %v", raw, err)
	}
	return envelope
}
