package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"pairup_server/models"
)

// testEnv wires every service against one in-memory store with a
// controllable clock.
type testEnv struct {
	fake     *fakeDynamo
	requests *SearchRequestService
	profiles *UserProfileService
	links    *MeetLinkService
	match    *MatchService
	meet     *MeetService

	now time.Time
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		fake: newFakeDynamo(),
		now:  time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	dynamo := &DynamoService{Client: env.fake}
	env.requests = &SearchRequestService{Dynamo: dynamo}
	env.profiles = &UserProfileService{Dynamo: dynamo}
	env.links = &MeetLinkService{Dynamo: dynamo, Requests: env.requests}
	env.match = &MatchService{
		Requests: env.requests,
		Profiles: env.profiles,
		Links:    env.links,
		Now:      func() time.Time { return env.now },
	}
	env.meet = &MeetService{
		Profiles: env.profiles,
		Links:    env.links,
		Rand:     rand.New(rand.NewSource(1)),
	}
	return env
}

func (env *testEnv) advance(d time.Duration) {
	env.now = env.now.Add(d)
}

func (env *testEnv) addUser(t *testing.T, id, name, location string, interests ...string) {
	t.Helper()
	profile := models.UserProfile{
		UserID:       id,
		Name:         name,
		Age:          30,
		Gender:       "other",
		Location:     location,
		Interests:    interests,
		ProfileReady: true,
	}
	if err := env.profiles.Dynamo.PutItem(context.Background(), models.UserProfilesTable, profile); err != nil {
		t.Fatalf("failed to add user %s: %v", id, err)
	}
}

func (env *testEnv) countSurrogates(t *testing.T) int {
	t.Helper()
	var profiles []models.UserProfile
	err := env.profiles.Dynamo.ScanWithFilter(context.Background(), models.UserProfilesTable, nil, &profiles)
	if err != nil {
		t.Fatalf("failed to scan profiles: %v", err)
	}
	count := 0
	for _, p := range profiles {
		if p.IsSurrogate {
			count++
		}
	}
	return count
}

func (env *testEnv) countMeetLinks(t *testing.T) int {
	t.Helper()
	var links []models.MeetLink
	err := env.links.Dynamo.ScanWithFilter(context.Background(), models.MeetLinksTable, nil, &links)
	if err != nil {
		t.Fatalf("failed to scan meet links: %v", err)
	}
	return len(links)
}
