package service

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"wcircle.app/watchcircle/internal/model"
)

// SearchService maintains the Meilisearch user index that backs follow
// suggestions and user lookup.
type SearchService interface {
	IndexUser(user *model.User) error
	DeleteUser(id string) error
	// SearchUsers returns matching user ids. An empty query lists documents
	// in index order, which is how the suggestion pool is sampled.
	SearchUsers(query string, limit int) ([]uuid.UUID, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

type meiliUserDoc struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	CreatedAt   int64  `json:"created_at"`
}

func NewMeiliSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{client: client}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	sortable := []string{"created_at"}
	if _, err := s.client.Index("users").UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to configure users index: %v", err)
	}
}

func (s *meiliSearchService) IndexUser(user *model.User) error {
	doc := meiliUserDoc{
		ID:        user.ID.String(),
		Username:  user.Username,
		CreatedAt: user.CreatedAt.Unix(),
	}
	if user.Profile != nil {
		doc.DisplayName = user.Profile.DisplayName
	}
	if user.AvatarURL != nil {
		doc.AvatarURL = *user.AvatarURL
	}

	task, err := s.client.Index("users").AddDocuments([]meiliUserDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed user %s, task id: %d", user.ID, task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteUser(id string) error {
	_, err := s.client.Index("users").DeleteDocument(id)
	return err
}

func (s *meiliSearchService) SearchUsers(query string, limit int) ([]uuid.UUID, error) {
	resp, err := s.client.Index("users").Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so the hit shape stays decoupled from the
	// client library's hit type.
	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, err
	}
	var docs []meiliUserDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(docs))
	for _, doc := range docs {
		if id, err := uuid.Parse(doc.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
