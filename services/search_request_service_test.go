package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"pairup_server/models"
)

func TestClaimForMatch_TransitionsOnce(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	req := NewSearchRequest("user1", "Tennis", env.now)
	if err := env.requests.Create(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := env.requests.ClaimForMatch(ctx, req.ID, "user2"); err != nil {
		t.Fatalf("first claim should win: %v", err)
	}
	if err := env.requests.ClaimForMatch(ctx, req.ID, "user3"); !errors.Is(err, ErrConditionFailed) {
		t.Fatalf("second claim should lose with ErrConditionFailed, got %v", err)
	}

	claimed, err := env.requests.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claimed.Status != models.SearchStatusMatched {
		t.Fatalf("expected matched, got %s", claimed.Status)
	}
	if claimed.MatchedWithUserID == nil || *claimed.MatchedWithUserID != "user2" {
		t.Fatalf("expected partner user2, got %+v", claimed.MatchedWithUserID)
	}
}

func TestClaimForMatch_ConcurrentSingleWinner(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	req := NewSearchRequest("user1", "Tennis", env.now)
	if err := env.requests.Create(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const claimants = 16
	var wg sync.WaitGroup
	wins := make(chan string, claimants)
	for i := 0; i < claimants; i++ {
		partner := fmt.Sprintf("claimant%d", i)
		wg.Add(1)
		go func(partner string) {
			defer wg.Done()
			err := env.requests.ClaimForMatch(ctx, req.ID, partner)
			if err == nil {
				wins <- partner
				return
			}
			if !errors.Is(err, ErrConditionFailed) {
				t.Errorf("unexpected error for %s: %v", partner, err)
			}
		}(partner)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one winner, got %d", len(winners))
	}

	claimed, err := env.requests.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *claimed.MatchedWithUserID != winners[0] {
		t.Fatalf("stored partner %s does not match winner %s", *claimed.MatchedWithUserID, winners[0])
	}
}

func TestClaimForMatch_MissingRequest(t *testing.T) {
	env := setupEnv(t)

	err := env.requests.ClaimForMatch(context.Background(), "missing", "user2")
	if !errors.Is(err, ErrConditionFailed) {
		t.Fatalf("claiming a missing request should fail the condition, got %v", err)
	}
}

func TestReserveMeetLink_FirstWriterWins(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	req := NewSearchRequest("user1", "Tennis", env.now)
	if err := env.requests.Create(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := env.requests.ReserveMeetLink(ctx, req.ID, "link-a"); err != nil {
		t.Fatalf("first reserve should win: %v", err)
	}
	if err := env.requests.ReserveMeetLink(ctx, req.ID, "link-b"); !errors.Is(err, ErrConditionFailed) {
		t.Fatalf("second reserve should lose, got %v", err)
	}

	current, err := env.requests.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.MeetLinkID == nil || *current.MeetLinkID != "link-a" {
		t.Fatalf("expected link-a to stick, got %+v", current.MeetLinkID)
	}
}

func TestListSearching_FiltersAndOrders(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	newest := NewSearchRequest("user1", "Tennis", env.now)
	oldest := NewSearchRequest("user2", "Tennis", env.now.Add(-time.Minute))
	otherActivity := NewSearchRequest("user3", "Chess", env.now)
	matched := NewSearchRequest("user4", "Tennis", env.now)
	matched.Status = models.SearchStatusMatched
	own := NewSearchRequest("caller", "Tennis", env.now)

	for _, req := range []models.SearchRequest{newest, oldest, otherActivity, matched, own} {
		if err := env.requests.Create(ctx, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	waiting, err := env.requests.ListSearching(ctx, "Tennis", "caller")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(waiting) != 2 {
		t.Fatalf("expected 2 waiting requests, got %d", len(waiting))
	}
	if waiting[0].UserID != "user2" || waiting[1].UserID != "user1" {
		t.Fatalf("expected oldest-first ordering, got %s then %s", waiting[0].UserID, waiting[1].UserID)
	}
}
