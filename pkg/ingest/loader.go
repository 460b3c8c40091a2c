package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"healthbridge-be/internal/constant"
	"healthbridge-be/internal/pkg/logger"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// Chunk is one split piece of a source document, ready for embedding.
type Chunk struct {
	Text     string
	Metadata map[string]interface{}
	Index    int
}

// Loader walks a directory, extracts text from the supported formats and
// splits it into overlapping chunks.
type Loader struct {
	splitter textsplitter.RecursiveCharacter
	logger   logger.ILogger
}

func NewLoader(log logger.ILogger) *Loader {
	return &Loader{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(constant.ChunkSize),
			textsplitter.WithChunkOverlap(constant.ChunkOverlap),
		),
		logger: log,
	}
}

// LoadDir loads every supported file under dir. A file that fails to
// parse is logged and skipped; one bad document must not sink the batch.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]Chunk, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("document directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("document path %q is not a directory", dir)
	}

	var chunks []Chunk
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".txt", ".md", ".pdf", ".docx":
		default:
			return nil
		}

		fileChunks, err := l.LoadFile(ctx, path)
		if err != nil {
			l.logger.Warn("ingest", "skipping unreadable document", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			return nil
		}
		chunks = append(chunks, fileChunks...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return chunks, nil
}

// LoadFile extracts and splits a single document.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]Chunk, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var docs []schema.Document
	var err error

	switch ext {
	case ".txt", ".md":
		docs, err = l.loadText(ctx, path)
	case ".pdf":
		docs, err = l.loadPDF(ctx, path)
	case ".docx":
		docs, err = l.loadDocx(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported document format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(docs))
	for i, doc := range docs {
		if strings.TrimSpace(doc.PageContent) == "" {
			continue
		}
		metadata := FilterMetadata(doc.Metadata)
		metadata["source"] = filepath.Base(path)
		chunks = append(chunks, Chunk{
			Text:     doc.PageContent,
			Metadata: metadata,
			Index:    i,
		})
	}
	return chunks, nil
}

func (l *Loader) loadText(ctx context.Context, path string) ([]schema.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return documentloaders.NewText(f).LoadAndSplit(ctx, l.splitter)
}

func (l *Loader) loadPDF(ctx context.Context, path string) ([]schema.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return documentloaders.NewPDF(f, info.Size()).LoadAndSplit(ctx, l.splitter)
}

func (l *Loader) loadDocx(ctx context.Context, path string) ([]schema.Document, error) {
	text, err := extractDocxText(path)
	if err != nil {
		return nil, err
	}

	return documentloaders.NewText(strings.NewReader(text)).LoadAndSplit(ctx, l.splitter)
}
