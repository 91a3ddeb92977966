package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"pairup_server/models"
	"pairup_server/utils"
)

// defaultMeetDuration is used when the caller does not specify one.
const defaultMeetDuration = 60

// surrogateMeetName is the stable name of the empty-pool surrogate for the
// open meet flow.
const surrogateMeetName = "Demo User"

// MeetService implements the open-ended "meet someone" flow: pick a partner
// under a selection policy and create the meet link in one shot. There is no
// searching state here.
type MeetService struct {
	Profiles *UserProfileService
	Links    *MeetLinkService

	// Rand overrides the random source in tests. Nil means a time-seeded one.
	Rand *rand.Rand
}

// MeetResult is the response to a meet request.
type MeetResult struct {
	MeetLinkID   string `json:"meetLinkId"`
	MatchName    string `json:"matchName"`
	MeetLocation string `json:"meetLocation"`
}

// MeetStatusResult is the response to a meet status lookup.
type MeetStatusResult struct {
	MatchName    string `json:"matchName"`
	UserName     string `json:"userName"`
	MeetLocation string `json:"meetLocation"`
}

func (msv *MeetService) rng() *rand.Rand {
	if msv.Rand != nil {
		return msv.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// SelectPartner picks a partner from the pool under the given mode. Pure
// given (requester, pool, mode, rng): no store access. Returns nil when the
// eligible pool is empty; the caller decides what to substitute.
func SelectPartner(requester models.UserProfile, pool []models.UserProfile, mode string, rng *rand.Rand) *models.UserProfile {
	var eligible []models.UserProfile
	for _, candidate := range pool {
		if candidate.UserID == requester.UserID || !candidate.ProfileReady {
			continue
		}
		eligible = append(eligible, candidate)
	}
	if len(eligible) == 0 {
		return nil
	}

	switch mode {
	case models.MeetModeStandard, models.MeetModeSurpriseLow:
		if shared := filterByAffinity(requester, eligible, true); len(shared) > 0 {
			return &shared[rng.Intn(len(shared))]
		}
	case models.MeetModeSurpriseHigh:
		if disjoint := filterByAffinity(requester, eligible, false); len(disjoint) > 0 {
			return &disjoint[rng.Intn(len(disjoint))]
		}
	}

	// surprise-medium, or no candidate survived the mode's filter.
	return &eligible[rng.Intn(len(eligible))]
}

// filterByAffinity keeps pool members that share at least one interest tag
// with the requester (shared=true) or none at all (shared=false).
func filterByAffinity(requester models.UserProfile, pool []models.UserProfile, shared bool) []models.UserProfile {
	tags := make(map[string]struct{}, len(requester.Interests))
	for _, tag := range requester.Interests {
		tags[tag] = struct{}{}
	}

	var out []models.UserProfile
	for _, candidate := range pool {
		overlap := false
		for _, tag := range candidate.Interests {
			if _, ok := tags[tag]; ok {
				overlap = true
				break
			}
		}
		if overlap == shared {
			out = append(out, candidate)
		}
	}
	return out
}

// RequestMeet picks a partner for the requester and creates the meet link.
func (msv *MeetService) RequestMeet(ctx context.Context, userID string, durationMinutes *int, mode string) (*MeetResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if mode == "" {
		mode = models.MeetModeStandard
	}
	if !models.IsValidMeetMode(mode) {
		return nil, fmt.Errorf("%w: unknown mode '%s'", ErrValidation, mode)
	}
	duration := defaultMeetDuration
	if durationMinutes != nil {
		if *durationMinutes <= 0 {
			return nil, fmt.Errorf("%w: durationMinutes must be positive", ErrValidation)
		}
		duration = *durationMinutes
	}

	requester, err := msv.Profiles.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	pool, err := msv.Profiles.ListEligibleProfiles(ctx, userID)
	if err != nil {
		return nil, err
	}

	partner := SelectPartner(*requester, pool, mode, msv.rng())
	if partner == nil {
		interests := requester.Interests
		if len(interests) == 0 {
			interests = []string{"coffee", "chat"}
		}
		partner, err = msv.Profiles.FindOrCreateSurrogate(ctx, surrogateMeetName, models.UserProfile{
			Age:       25,
			Gender:    "other",
			Location:  requester.Location,
			Interests: interests,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("Empty meet pool for %s, using surrogate %s", userID, partner.UserID)
	}

	meetLocation := utils.JoinLocations(requester.Location, partner.Location)

	link, err := msv.Links.Create(ctx, userID, partner.UserID, meetLocation, &duration)
	if err != nil {
		return nil, err
	}

	matchName := partner.Name
	if matchName == "" {
		matchName = "Someone"
	}

	log.Printf("Meet %s: %s paired with %s at '%s' (%s)", link.ID, userID, partner.UserID, meetLocation, mode)
	return &MeetResult{
		MeetLinkID:   link.ID,
		MatchName:    matchName,
		MeetLocation: meetLocation,
	}, nil
}

// GetMeetStatus reports both parties' names and the meet location for an
// existing meet link.
func (msv *MeetService) GetMeetStatus(ctx context.Context, meetLinkID, userID string) (*MeetStatusResult, error) {
	if meetLinkID == "" || userID == "" {
		return nil, fmt.Errorf("%w: meetLinkId and userId are required", ErrValidation)
	}

	link, err := msv.Links.Get(ctx, meetLinkID)
	if err != nil {
		return nil, err
	}

	selfID, otherID := link.PartyAID, link.PartyBID
	if userID == link.PartyBID {
		selfID, otherID = link.PartyBID, link.PartyAID
	}

	other, err := msv.Profiles.GetUserProfile(ctx, otherID)
	if err != nil {
		return nil, fmt.Errorf("meet link %s partner: %w", meetLinkID, ErrNotFound)
	}

	userName := ""
	if self, serr := msv.Profiles.GetUserProfile(ctx, selfID); serr == nil {
		userName = self.Name
	}

	matchName := other.Name
	if matchName == "" {
		matchName = "Someone"
	}

	return &MeetStatusResult{
		MatchName:    matchName,
		UserName:     userName,
		MeetLocation: link.Location,
	}, nil
}
