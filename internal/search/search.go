// Package search provides semantic search over saved conversations using an
// in-memory vector index built on demand from the fetched history.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/kbhargava/promptline/internal/api"
)

const collectionName = "conversations"

// Result is one matching chat turn with its source conversation.
type Result struct {
	ConversationID    string
	ConversationTitle string
	Role              api.Role
	Content           string
	Similarity        float32
}

// Index holds an embedded view of the conversation history. One document is
// indexed per chat turn so results point at the matching exchange, not just
// a whole conversation.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewIndex creates an empty in-memory index. embedFunc may be nil, in which
// case chromem's default (OpenAI, keyed by OPENAI_API_KEY) is used.
func NewIndex(embedFunc chromem.EmbeddingFunc) (*Index, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{db: db, collection: col}, nil
}

// NewOpenAIIndex creates an index that embeds with the OpenAI API.
func NewOpenAIIndex(apiKey string) (*Index, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for semantic search")
	}
	return NewIndex(chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI3Small))
}

// Add indexes every turn of the given conversations.
func (ix *Index) Add(ctx context.Context, convs []api.Conversation) error {
	var docs []chromem.Document
	for _, conv := range convs {
		for i, msg := range conv.Messages {
			content := strings.TrimSpace(msg.Content)
			if content == "" {
				continue
			}
			docs = append(docs, chromem.Document{
				ID:      conv.ID + "#" + strconv.Itoa(i),
				Content: content,
				Metadata: map[string]string{
					"conversation_id": conv.ID,
					"title":           conv.Title,
					"role":            string(msg.Role),
				},
			})
		}
	}
	if len(docs) == 0 {
		return nil
	}

	if err := ix.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("indexing conversations: %w", err)
	}
	return nil
}

// Count returns the number of indexed turns.
func (ix *Index) Count() int { return ix.collection.Count() }

// Search returns the most similar turns for the query.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 5
	}

	// chromem requires nResults <= collection size.
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := ix.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = Result{
			ConversationID:    r.Metadata["conversation_id"],
			ConversationTitle: r.Metadata["title"],
			Role:              api.Role(r.Metadata["role"]),
			Content:           r.Content,
			Similarity:        r.Similarity,
		}
	}
	return out, nil
}
