package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"pairup_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// SearchRequestService owns reads and writes of SearchRequest records. All
// status transitions go through ClaimForMatch, the single conditional-update
// path; read-modify-write without that guard is not allowed.
type SearchRequestService struct {
	Dynamo *DynamoService
}

// NewSearchRequest builds a fresh searching request for a user.
func NewSearchRequest(userID, activityClass string, now time.Time) models.SearchRequest {
	return models.SearchRequest{
		ID:            uuid.New().String(),
		UserID:        userID,
		ActivityClass: activityClass,
		Status:        models.SearchStatusSearching,
		CreatedAt:     now.Format(time.RFC3339Nano),
	}
}

// Create persists a request.
func (s *SearchRequestService) Create(ctx context.Context, req models.SearchRequest) error {
	return s.Dynamo.PutItem(ctx, models.SearchRequestsTable, req)
}

// Get retrieves a request by id.
func (s *SearchRequestService) Get(ctx context.Context, requestID string) (*models.SearchRequest, error) {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: requestID},
	}
	item, err := s.Dynamo.GetItem(ctx, models.SearchRequestsTable, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("request %s: %w", requestID, ErrNotFound)
		}
		return nil, err
	}

	var req models.SearchRequest
	if err := attributevalue.UnmarshalMap(item, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	return &req, nil
}

// ListSearching returns all waiting requests for an activity class, excluding
// the caller's own, oldest first. FIFO order means the longest-waiting user
// is served first.
func (s *SearchRequestService) ListSearching(ctx context.Context, activityClass, excludeUserID string) ([]models.SearchRequest, error) {
	var waiting []models.SearchRequest
	err := s.Dynamo.ScanWithFilter(ctx, models.SearchRequestsTable, func(item map[string]types.AttributeValue) bool {
		status, ok := item["status"].(*types.AttributeValueMemberS)
		if !ok || status.Value != models.SearchStatusSearching {
			return false
		}
		activity, ok := item["activityClass"].(*types.AttributeValueMemberS)
		if !ok || activity.Value != activityClass {
			return false
		}
		owner, ok := item["userId"].(*types.AttributeValueMemberS)
		return ok && owner.Value != excludeUserID
	}, &waiting)
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting requests: %w", err)
	}

	sort.Slice(waiting, func(i, j int) bool {
		if waiting[i].CreatedAt != waiting[j].CreatedAt {
			return waiting[i].CreatedAt < waiting[j].CreatedAt
		}
		return waiting[i].ID < waiting[j].ID
	})
	return waiting, nil
}

// ClaimForMatch atomically transitions a request from searching to matched
// and records the partner in the same write, guarded on the status still
// being searching. Exactly one of N concurrent claimants succeeds; the rest
// get ErrConditionFailed.
func (s *SearchRequestService) ClaimForMatch(ctx context.Context, requestID, partnerUserID string) error {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: requestID},
	}
	_, err := s.Dynamo.UpdateItemWithCondition(
		ctx,
		models.SearchRequestsTable,
		key,
		"SET #status = :matched, #partner = :partner",
		"#status = :searching",
		map[string]types.AttributeValue{
			":matched":   &types.AttributeValueMemberS{Value: models.SearchStatusMatched},
			":searching": &types.AttributeValueMemberS{Value: models.SearchStatusSearching},
			":partner":   &types.AttributeValueMemberS{Value: partnerUserID},
		},
		map[string]string{
			"#status":  "status",
			"#partner": "matchedWithUserId",
		},
	)
	return err
}

// ReserveMeetLink attaches a meet link id to a request only if none is
// attached yet. Losing the condition means another caller attached first.
func (s *SearchRequestService) ReserveMeetLink(ctx context.Context, requestID, meetLinkID string) error {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: requestID},
	}
	_, err := s.Dynamo.UpdateItemWithCondition(
		ctx,
		models.SearchRequestsTable,
		key,
		"SET #link = :link",
		"attribute_not_exists(#link)",
		map[string]types.AttributeValue{
			":link": &types.AttributeValueMemberS{Value: meetLinkID},
		},
		map[string]string{
			"#link": "meetLinkId",
		},
	)
	return err
}
