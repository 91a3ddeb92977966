package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pairup_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// UserProfileService reads user profiles. Profiles are owned by the profile
// subsystem; the only write this service performs is surrogate creation,
// which is additive-only.
type UserProfileService struct {
	Dynamo *DynamoService
}

// GetUserProfile retrieves a user profile by ID
func (ups *UserProfileService) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := ups.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

// ListEligibleProfiles returns all profiles that can be offered as partners:
// profileReady, excluding the requester.
func (ups *UserProfileService) ListEligibleProfiles(ctx context.Context, excludeUserID string) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	err := ups.Dynamo.ScanWithFilter(ctx, models.UserProfilesTable, func(item map[string]types.AttributeValue) bool {
		if id, ok := item["userId"].(*types.AttributeValueMemberS); ok && id.Value == excludeUserID {
			return false
		}
		ready, ok := item["profileReady"].(*types.AttributeValueMemberBOOL)
		return ok && ready.Value
	}, &profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible profiles: %w", err)
	}
	return profiles, nil
}

// FindOrCreateSurrogate returns the surrogate profile with the given name,
// creating it from the seed if it does not exist yet. The surrogate id is
// derived from the name, so repeated fallbacks (and concurrent creators)
// converge on one record instead of growing the user table per call.
func (ups *UserProfileService) FindOrCreateSurrogate(ctx context.Context, name string, seed models.UserProfile) (*models.UserProfile, error) {
	var existing []models.UserProfile
	err := ups.Dynamo.ScanWithFilter(ctx, models.UserProfilesTable, func(item map[string]types.AttributeValue) bool {
		sur, ok := item["isSurrogate"].(*types.AttributeValueMemberBOOL)
		if !ok || !sur.Value {
			return false
		}
		n, ok := item["name"].(*types.AttributeValueMemberS)
		return ok && n.Value == name
	}, &existing)
	if err != nil {
		return nil, fmt.Errorf("failed to look up surrogate '%s': %w", name, err)
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}

	surrogate := seed
	surrogate.UserID = SurrogateID(name)
	surrogate.Name = name
	surrogate.ProfileReady = true
	surrogate.IsSurrogate = true

	if err := ups.Dynamo.PutItemIfAbsent(ctx, models.UserProfilesTable, surrogate, "userId"); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			// A concurrent caller created it; reuse theirs.
			return ups.GetUserProfile(ctx, surrogate.UserID)
		}
		return nil, err
	}

	log.Printf("Created surrogate profile %s (%s)", surrogate.UserID, name)
	return &surrogate, nil
}

// SurrogateID derives the stable id for a surrogate profile from its name.
func SurrogateID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("surrogate:"+name)).String()
}
