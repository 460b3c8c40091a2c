package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"healthbridge-be/internal/entity"
	"healthbridge-be/internal/repository/contract"
	"healthbridge-be/internal/repository/specification"
	"healthbridge-be/internal/repository/unitofwork"
	"healthbridge-be/pkg/ingest"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type stubEmbedder struct{}

func (stubEmbedder) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	return []float32{0.5, 0.5}, nil
}

// recordingChunkRepo collects stored chunks; the consumer writes from its
// own goroutine.
type recordingChunkRepo struct {
	mu     sync.Mutex
	stored []*entity.DocumentChunk
}

func (r *recordingChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = append(r.stored, chunks...)
	return nil
}

func (r *recordingChunkRepo) DeleteByCollection(ctx context.Context, collection string) error {
	return nil
}

func (r *recordingChunkRepo) CountByCollection(ctx context.Context, collection string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.stored)), nil
}

func (r *recordingChunkRepo) SearchSimilar(ctx context.Context, collection string, embedding []float32, k int) ([]*entity.DocumentChunk, error) {
	return nil, nil
}

func (r *recordingChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return nil, nil
}

func (r *recordingChunkRepo) snapshot() []*entity.DocumentChunk {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.DocumentChunk, len(r.stored))
	copy(out, r.stored)
	return out
}

type stubUnitOfWork struct {
	chunks contract.DocumentChunkRepository
}

func (u *stubUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *stubUnitOfWork) Commit() error                   { return nil }
func (u *stubUnitOfWork) Rollback() error                 { return nil }

func (u *stubUnitOfWork) ChatRepository() contract.ChatRepository       { return nil }
func (u *stubUnitOfWork) MessageRepository() contract.MessageRepository { return nil }
func (u *stubUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return u.chunks
}

type stubFactory struct {
	uow unitofwork.UnitOfWork
}

func (f *stubFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func newQueueService(t *testing.T, repo *recordingChunkRepo) IKnowledgeService {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	return NewKnowledgeService(
		pubSub,
		"TEST_INGEST",
		&stubFactory{uow: &stubUnitOfWork{chunks: repo}},
		stubEmbedder{},
		ingest.NewLoader(nopLogger{}),
		"health_documents",
		nil,
		nopLogger{},
	)
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestPublishConsumeRoundtrip(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "schemes.txt", "The Karunya scheme covers treatment costs for low income families.")
	writeDoc(t, dir, "remedies.md", "For a common cold drink warm fluids and rest.")

	repo := &recordingChunkRepo{}
	svc := newQueueService(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The gochannel transport only delivers to live subscribers, so the
	// consumer must be running before anything is published.
	require.NoError(t, svc.Consume(ctx))

	queued, err := svc.PublishDocuments(ctx, dir)
	require.NoError(t, err)
	require.Equal(t, 2, queued)

	require.Eventually(t, func() bool {
		return len(repo.snapshot()) == queued
	}, 5*time.Second, 10*time.Millisecond)

	stored := repo.snapshot()
	sources := make(map[string]bool)
	for _, chunk := range stored {
		assert.Equal(t, "health_documents", chunk.Collection)
		assert.Equal(t, []float32{0.5, 0.5}, chunk.Embedding)
		if source, ok := chunk.Metadata["source"].(string); ok {
			sources[source] = true
		}
	}
	assert.True(t, sources["schemes.txt"])
	assert.True(t, sources["remedies.md"])
}

func TestPublishDocumentsMissingDir(t *testing.T) {
	repo := &recordingChunkRepo{}
	svc := newQueueService(t, repo)

	_, err := svc.PublishDocuments(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestGroupBySource(t *testing.T) {
	chunks := []ingest.Chunk{
		{Text: "a1", Metadata: map[string]interface{}{"source": "a.txt"}, Index: 0},
		{Text: "a2", Metadata: map[string]interface{}{"source": "a.txt"}, Index: 1},
		{Text: "b1", Metadata: map[string]interface{}{"source": "b.pdf"}, Index: 0},
		{Text: "a3", Metadata: map[string]interface{}{"source": "a.txt"}, Index: 2},
	}

	batches := groupBySource("health_documents", chunks)

	require.Len(t, batches, 2)

	assert.Equal(t, "a.txt", batches[0].Source)
	assert.Equal(t, "health_documents", batches[0].Collection)
	require.Len(t, batches[0].Chunks, 3)
	assert.Equal(t, "a1", batches[0].Chunks[0].Text)
	assert.Equal(t, "a3", batches[0].Chunks[2].Text)

	assert.Equal(t, "b.pdf", batches[1].Source)
	require.Len(t, batches[1].Chunks, 1)
}

func TestGroupBySourceEmpty(t *testing.T) {
	assert.Empty(t, groupBySource("c", nil))
}
