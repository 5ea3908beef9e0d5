// Package knowledge provides the in-memory topic document index consulted
// during response synthesis. Retrieval is lexical substring matching with a
// length-ratio relevance heuristic; there is no semantic search. The linear
// scan is adequate at expected scale and hides behind the Index interface so
// an inverted index or embedding store could be substituted later without
// touching the synthesizer or coordinator.
package knowledge

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mailflow/internal/types"
)

// DefaultSearchLimit caps Search results when the caller passes no limit.
const DefaultSearchLimit = 10

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("knowledge document not found")

// Index is the retrieval contract the synthesizer depends on.
type Index interface {
	Add(title, content, category string, tags []string) string
	Search(query, category string, limit int) []types.Document
	Get(id string) (types.Document, error)
	Update(id string, fields DocumentUpdate) error
	Delete(id string) error
}

// DocumentUpdate carries the optional fields of an administrative update.
// Nil pointers leave the corresponding field unchanged.
type DocumentUpdate struct {
	Title    *string
	Content  *string
	Category *string
	Tags     []string
}

// MemoryIndex is the linear-scan Index implementation. Mutations are
// synchronous and immediately visible to subsequent searches.
type MemoryIndex struct {
	mu     sync.RWMutex
	docs   []types.Document
	logger *zap.Logger
}

// NewMemoryIndex creates an empty index. A nil logger is replaced with a
// no-op logger.
func NewMemoryIndex(logger *zap.Logger) *MemoryIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryIndex{logger: logger}
}

// Add inserts a document and returns its generated id.
func (ix *MemoryIndex) Add(title, content, category string, tags []string) string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	doc := types.Document{
		ID:       uuid.NewString(),
		Title:    title,
		Content:  content,
		Category: category,
		Tags:     tags,
	}
	ix.docs = append(ix.docs, doc)

	ix.logger.Debug("Added knowledge document",
		zap.String("id", doc.ID),
		zap.String("title", title))
	return doc.ID
}

// Search returns documents whose title, content, or any tag contains the
// lowercased query, optionally filtered by exact category. Results are
// ordered by a relevance heuristic: the ratio of query length to combined
// title+content length, descending, so shorter documents containing the
// query rank higher. Ties keep encounter order. The heuristic is kept for
// compatibility with the source system and is a likely future replacement.
func (ix *MemoryIndex) Search(query, category string, limit int) []types.Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	queryLower := strings.ToLower(query)
	results := make([]types.Document, 0)

	for _, doc := range ix.docs {
		if category != "" && doc.Category != category {
			continue
		}
		if ix.matches(doc, queryLower) {
			results = append(results, doc)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return relevance(queryLower, results[i]) > relevance(queryLower, results[j])
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (ix *MemoryIndex) matches(doc types.Document, queryLower string) bool {
	if strings.Contains(strings.ToLower(doc.Title), queryLower) ||
		strings.Contains(strings.ToLower(doc.Content), queryLower) {
		return true
	}
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), queryLower) {
			return true
		}
	}
	return false
}

// relevance is the length-ratio score. Zero-length documents score zero
// rather than dividing by zero.
func relevance(queryLower string, doc types.Document) float64 {
	total := len(doc.Title) + len(doc.Content)
	if total == 0 {
		return 0
	}
	return float64(len(queryLower)) / float64(total)
}

// Get returns the document with the given id.
func (ix *MemoryIndex) Get(id string) (types.Document, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	for _, doc := range ix.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return types.Document{}, ErrNotFound
}

// Update applies the non-nil fields of the update to an existing document.
func (ix *MemoryIndex) Update(id string, fields DocumentUpdate) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for i := range ix.docs {
		if ix.docs[i].ID != id {
			continue
		}
		if fields.Title != nil {
			ix.docs[i].Title = *fields.Title
		}
		if fields.Content != nil {
			ix.docs[i].Content = *fields.Content
		}
		if fields.Category != nil {
			ix.docs[i].Category = *fields.Category
		}
		if fields.Tags != nil {
			ix.docs[i].Tags = fields.Tags
		}
		ix.logger.Debug("Updated knowledge document", zap.String("id", id))
		return nil
	}
	return ErrNotFound
}

// Delete removes a document by id.
func (ix *MemoryIndex) Delete(id string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for i := range ix.docs {
		if ix.docs[i].ID == id {
			ix.docs = append(ix.docs[:i], ix.docs[i+1:]...)
			ix.logger.Debug("Deleted knowledge document", zap.String("id", id))
			return nil
		}
	}
	return ErrNotFound
}

// Len returns the number of indexed documents.
func (ix *MemoryIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Categories returns the distinct non-empty categories in encounter order.
func (ix *MemoryIndex) Categories() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, doc := range ix.docs {
		if doc.Category != "" && !seen[doc.Category] {
			seen[doc.Category] = true
			categories = append(categories, doc.Category)
		}
	}
	return categories
}

// Tags returns the distinct tags in encounter order.
func (ix *MemoryIndex) Tags() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[string]bool)
	tags := make([]string, 0)
	for _, doc := range ix.docs {
		for _, tag := range doc.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// replaceAll swaps the entire document set. Used by seed reloads; searches
// issued concurrently see either the old or the new set, never a mix.
func (ix *MemoryIndex) replaceAll(docs []types.Document) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docs = docs
}
