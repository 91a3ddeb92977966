package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pairup_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// MeetLinkService creates and lazily repairs meet links.
type MeetLinkService struct {
	Dynamo   *DynamoService
	Requests *SearchRequestService
}

// Create writes a new meet link for two participants.
func (mls *MeetLinkService) Create(ctx context.Context, partyAID, partyBID, location string, durationMinutes *int) (*models.MeetLink, error) {
	link := models.MeetLink{
		ID:              uuid.New().String(),
		PartyAID:        partyAID,
		PartyBID:        partyBID,
		Location:        location,
		DurationMinutes: durationMinutes,
		CreatedAt:       time.Now().Format(time.RFC3339Nano),
	}
	if err := mls.Dynamo.PutItem(ctx, models.MeetLinksTable, link); err != nil {
		return nil, fmt.Errorf("failed to create meet link: %w", err)
	}
	log.Printf("Created meet link %s for %s and %s", link.ID, partyAID, partyBID)
	return &link, nil
}

// Get retrieves a meet link by id.
func (mls *MeetLinkService) Get(ctx context.Context, linkID string) (*models.MeetLink, error) {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: linkID},
	}
	item, err := mls.Dynamo.GetItem(ctx, models.MeetLinksTable, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("meet link %s: %w", linkID, ErrNotFound)
		}
		return nil, err
	}

	var link models.MeetLink
	if err := attributevalue.UnmarshalMap(item, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meet link: %w", err)
	}
	return &link, nil
}

// AttachIfAbsent makes sure a matched request has a meet link, creating one
// if needed. Safe to run repeatedly and concurrently: the link id is derived
// from the request id, the attach is a conditional update, and the record
// write is put-if-absent, so every racer converges on the same link.
//
// The id is reserved on the request row before the record is written. If the
// process dies in between, the next poll re-runs this path and the if-absent
// put fills the gap.
func (mls *MeetLinkService) AttachIfAbsent(ctx context.Context, req *models.SearchRequest, location string) (*models.MeetLink, error) {
	if req.MeetLinkID != nil {
		return mls.Get(ctx, *req.MeetLinkID)
	}

	partnerID := ""
	if req.MatchedWithUserID != nil {
		partnerID = *req.MatchedWithUserID
	}

	linkID := MeetLinkIDFor(req.ID)
	link := models.MeetLink{
		ID:        linkID,
		PartyAID:  req.UserID,
		PartyBID:  partnerID,
		Location:  location,
		CreatedAt: time.Now().Format(time.RFC3339Nano),
	}

	if err := mls.Requests.ReserveMeetLink(ctx, req.ID, linkID); err != nil {
		if !errors.Is(err, ErrConditionFailed) {
			return nil, err
		}
		current, gerr := mls.Requests.Get(ctx, req.ID)
		if gerr != nil {
			return nil, gerr
		}
		if current.MeetLinkID == nil {
			return nil, fmt.Errorf("request %s lost link reservation but has no link", req.ID)
		}
		req.MeetLinkID = current.MeetLinkID
		if *current.MeetLinkID != linkID {
			// Attached by the pairing path; the record precedes the attach.
			return mls.Get(ctx, *current.MeetLinkID)
		}
		// Another healer reserved the same derived id. Its record write may
		// still be in flight, but ours is identical, so fill in if absent.
	}

	if err := mls.Dynamo.PutItemIfAbsent(ctx, models.MeetLinksTable, link, "id"); err != nil && !errors.Is(err, ErrConditionFailed) {
		return nil, err
	}

	req.MeetLinkID = &link.ID
	log.Printf("Self-healed meet link %s for request %s", linkID, req.ID)
	return &link, nil
}

// MeetLinkIDFor derives the stable link id used by fallback and self-heal
// for a given request.
func MeetLinkIDFor(requestID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("meetlink:"+requestID)).String()
}
