package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/suedenergie/knowledge-backend/internal/apperrors"
)

// QdrantOptions configures the Qdrant REST gateway.
type QdrantOptions struct {
	Endpoint   string
	APIKey     string
	Collection string
	VectorSize int
	Distance   string
	UseTLS     bool
	Timeout    time.Duration
}

type qdrantVectorStore struct {
	client     *http.Client
	endpoint   string
	apiKey     string
	collection string
	vectorSize int
	distance   string
}

// NewQdrantVectorStore creates a vector store backed by the Qdrant REST API.
func NewQdrantVectorStore(opts QdrantOptions) (VectorStore, error) {
	if opts.Endpoint == "" {
		scheme := "http"
		if opts.UseTLS {
			scheme = "https"
		}
		opts.Endpoint = fmt.Sprintf("%s://localhost:6333", scheme)
	}

	if !strings.HasPrefix(opts.Endpoint, "http") {
		scheme := "http"
		if opts.UseTLS {
			scheme = "https"
		}
		opts.Endpoint = fmt.Sprintf("%s://%s", scheme, opts.Endpoint)
	}

	if opts.Collection == "" {
		opts.Collection = "suedenergie_docs"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}
	if opts.Distance == "" {
		opts.Distance = "Cosine"
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &qdrantVectorStore{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint:   strings.TrimSuffix(opts.Endpoint, "/"),
		apiKey:     opts.APIKey,
		collection: opts.Collection,
		vectorSize: opts.VectorSize,
		distance:   formatDistance(opts.Distance),
	}, nil
}

func formatDistance(value string) string {
	switch strings.ToLower(value) {
	case "dot", "dotproduct":
		return "Dot"
	case "euclid", "l2":
		return "Euclid"
	default:
		return "Cosine"
	}
}

// EnsureCollection checks existence by name and creates the collection only
// when absent. Calling it twice with the same configuration never errors.
func (s *qdrantVectorStore) EnsureCollection(ctx context.Context) error {
	resp, err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", s.collection), nil)
	if err == nil && resp.StatusCode == http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil
	}
	if resp != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     s.vectorSize,
			"distance": s.distance,
		},
	}
	resp, err = s.doRequest(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", s.collection), body)
	if err != nil {
		return apperrors.StoreWrite(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return apperrors.StoreWrite(fmt.Errorf("create collection %s: %s %s", s.collection, resp.Status, string(raw)))
	}

	return nil
}

// Upsert writes all records as one batch with wait=true, so the call is
// all-or-nothing at the store boundary.
func (s *qdrantVectorStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		if len(rec.Vector) != s.vectorSize {
			return apperrors.StoreWrite(fmt.Errorf("record %s: vector size %d does not match collection size %d",
				rec.ID, len(rec.Vector), s.vectorSize))
		}
		points = append(points, map[string]interface{}{
			"id":      rec.ID,
			"vector":  rec.Vector,
			"payload": payloadFields(rec.Payload),
		})
	}

	if err := s.EnsureCollection(ctx); err != nil {
		return err
	}

	body := map[string]interface{}{"points": points}
	resp, err := s.doRequest(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", s.collection), body)
	if err != nil {
		return apperrors.StoreWrite(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return apperrors.StoreWrite(fmt.Errorf("qdrant upsert: %s %s", resp.Status, string(raw)))
	}

	return nil
}

// Search returns the topK nearest records by descending similarity. Empty
// collection yields an empty slice.
func (s *qdrantVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if len(vector) == 0 {
		return nil, nil
	}
	if err := s.EnsureCollection(ctx); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}

	body := map[string]interface{}{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
		"with_vectors": false,
	}

	resp, err := s.doRequest(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", s.collection), body)
	if err != nil {
		return nil, apperrors.StoreRead(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, apperrors.StoreRead(fmt.Errorf("qdrant search: %s %s", resp.Status, string(raw)))
	}

	var searchResp struct {
		Result []struct {
			ID      interface{}            `json:"id"`
			Score   float64                `json:"score"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, apperrors.StoreRead(err)
	}

	matches := make([]Match, 0, len(searchResp.Result))
	for _, item := range searchResp.Result {
		matches = append(matches, Match{
			ID:      fmt.Sprintf("%v", item.ID),
			Score:   item.Score,
			Payload: parsePayload(item.Payload),
		})
	}

	return matches, nil
}

// DeleteBySource removes every record whose payload source matches. Used by
// the replace-on-re-ingest policy.
func (s *qdrantVectorStore) DeleteBySource(ctx context.Context, source string) error {
	if err := s.EnsureCollection(ctx); err != nil {
		return err
	}

	body := map[string]interface{}{
		"filter": map[string]interface{}{
			"must": []map[string]interface{}{
				{
					"key": "source",
					"match": map[string]interface{}{
						"value": source,
					},
				},
			},
		},
	}

	resp, err := s.doRequest(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", s.collection), body)
	if err != nil {
		return apperrors.StoreWrite(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return apperrors.StoreWrite(fmt.Errorf("qdrant delete: %s %s", resp.Status, string(raw)))
	}

	return nil
}

// Count reports the exact number of stored records.
func (s *qdrantVectorStore) Count(ctx context.Context) (int64, error) {
	if err := s.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	body := map[string]interface{}{"exact": true}
	resp, err := s.doRequest(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/count", s.collection), body)
	if err != nil {
		return 0, apperrors.StoreRead(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return 0, apperrors.StoreRead(fmt.Errorf("qdrant count: %s %s", resp.Status, string(raw)))
	}

	var countResp struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&countResp); err != nil {
		return 0, apperrors.StoreRead(err)
	}

	return countResp.Result.Count, nil
}

func (s *qdrantVectorStore) Ready() bool {
	return s.client != nil
}

func payloadFields(p Payload) map[string]interface{} {
	fields := map[string]interface{}{
		"text":   p.Text,
		"source": p.Source,
	}
	if p.Modified != "" {
		fields["modified"] = p.Modified
	}
	if p.Page > 0 {
		fields["page"] = p.Page
	}
	return fields
}

func parsePayload(raw map[string]interface{}) Payload {
	var p Payload
	if val, ok := raw["text"].(string); ok {
		p.Text = val
	}
	if val, ok := raw["source"].(string); ok {
		p.Source = val
	}
	if val, ok := raw["modified"].(string); ok {
		p.Modified = val
	}
	if val, ok := raw["page"].(float64); ok {
		p.Page = int(val)
	}
	return p
}

func (s *qdrantVectorStore) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	return s.client.Do(req)
}
