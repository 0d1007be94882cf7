package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/origenhr/advance-api/internal/models"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
)

const draftKeyPrefix = "advance:draft:"

// DraftRepository persists in-progress wizard drafts in Redis with a TTL so
// abandoned submissions expire on their own.
type DraftRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftRepository constructs a draft repository.
func NewDraftRepository(client *redis.Client, ttl time.Duration) *DraftRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &DraftRepository{client: client, ttl: ttl}
}

// Save stores the draft, refreshing its TTL on every transition.
func (r *DraftRepository) Save(ctx context.Context, draft *models.AdvanceDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", draft.ID, err)
	}
	if err := r.client.Set(ctx, draftKeyPrefix+draft.ID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save draft %s: %w", draft.ID, err)
	}
	return nil
}

// Get loads a draft by id. Missing or expired drafts surface as ErrNotFound.
func (r *DraftRepository) Get(ctx context.Context, id string) (*models.AdvanceDraft, error) {
	raw, err := r.client.Get(ctx, draftKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "draft not found or expired")
		}
		return nil, fmt.Errorf("get draft %s: %w", id, err)
	}

	var draft models.AdvanceDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft %s: %w", id, err)
	}
	return &draft, nil
}

// Delete removes a draft once it has been submitted.
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, draftKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete draft %s: %w", id, err)
	}
	return nil
}
