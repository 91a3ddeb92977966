package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"time"

	"pairup_server/models"
	"pairup_server/utils"

	"github.com/google/uuid"
)

// fallbackThreshold is how long a request may sit in searching before a
// status poll synthesizes a surrogate partner.
const fallbackThreshold = 10 * time.Second

// surrogateNames is the fixed roster of surrogate partner names. The pick is
// a deterministic function of the request id so concurrent pollers agree on
// the same surrogate.
var surrogateNames = []string{"Sarah", "Mike", "Jessica", "David", "Emily", "Chris", "Anna", "Tom"}

// MatchService coordinates activity pairing: it claims waiting requests for
// incoming searchers, answers status polls, and synthesizes a surrogate
// partner when a request waits past the fallback threshold.
type MatchService struct {
	Requests *SearchRequestService
	Profiles *UserProfileService
	Links    *MeetLinkService

	// Now overrides the clock in tests. Nil means time.Now.
	Now func() time.Time
}

// SearchResult is the response to a search submission.
type SearchResult struct {
	RequestID   string  `json:"requestId"`
	MatchUserID *string `json:"matchUserId"`
}

// StatusResult is the response to a status poll.
type StatusResult struct {
	Status        string                `json:"status"`
	ActivityClass string                `json:"activityClass"`
	MatchUserID   *string               `json:"matchUserId,omitempty"`
	MatchUser     *models.PublicProfile `json:"matchUser,omitempty"`
	MatchName     string                `json:"matchName,omitempty"`
	MeetLocation  string                `json:"meetLocation,omitempty"`
	MeetLinkID    *string               `json:"meetLinkId,omitempty"`
}

func (ms *MatchService) now() time.Time {
	if ms.Now != nil {
		return ms.Now()
	}
	return time.Now()
}

// SubmitSearch pairs the caller with the oldest waiting searcher for the
// same activity class, or records a new waiting request if nobody is there.
// The claim on the waiting request is a single conditional update, so two
// callers racing for the same request cannot both win it.
func (ms *MatchService) SubmitSearch(ctx context.Context, userID, activityClass string) (*SearchResult, error) {
	if userID == "" || activityClass == "" {
		return nil, fmt.Errorf("%w: userId and activityClass are required", ErrValidation)
	}

	caller, err := ms.Profiles.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	waiting, err := ms.Requests.ListSearching(ctx, activityClass, userID)
	if err != nil {
		return nil, err
	}

	for i := range waiting {
		candidate := &waiting[i]
		if err := ms.Requests.ClaimForMatch(ctx, candidate.ID, userID); err != nil {
			if errors.Is(err, ErrConditionFailed) {
				// Another caller claimed it first; try the next oldest.
				continue
			}
			return nil, err
		}

		// The candidate is now durably matched to the caller. Everything
		// below enriches that fact; if a write fails, self-heal on the next
		// status poll finishes the job.
		link, err := ms.Links.Create(ctx, candidate.UserID, userID, utils.VenueLocation(caller.Location, activityClass), nil)
		if err != nil {
			return nil, err
		}
		if err := ms.Requests.ReserveMeetLink(ctx, candidate.ID, link.ID); err != nil {
			if !errors.Is(err, ErrConditionFailed) {
				return nil, err
			}
			// A concurrent poller self-healed a link onto the claimed
			// request first. Adopt that link for the mirror so both sides
			// reference the same one; ours is abandoned.
			claimed, gerr := ms.Requests.Get(ctx, candidate.ID)
			if gerr != nil {
				return nil, gerr
			}
			if claimed.MeetLinkID != nil && *claimed.MeetLinkID != link.ID {
				adopted, lerr := ms.Links.Get(ctx, *claimed.MeetLinkID)
				if lerr != nil {
					return nil, lerr
				}
				log.Printf("Abandoning meet link %s for request %s, %s was attached first", link.ID, candidate.ID, adopted.ID)
				link = adopted
			}
		}

		mirror := models.SearchRequest{
			ID:                uuid.New().String(),
			UserID:            userID,
			ActivityClass:     activityClass,
			Status:            models.SearchStatusMatched,
			MatchedWithUserID: &candidate.UserID,
			MeetLinkID:        &link.ID,
			CreatedAt:         ms.now().Format(time.RFC3339Nano),
		}
		if err := ms.Requests.Create(ctx, mirror); err != nil {
			return nil, err
		}

		log.Printf("Paired %s with %s for %s (link %s)", userID, candidate.UserID, activityClass, link.ID)
		return &SearchResult{RequestID: mirror.ID, MatchUserID: &candidate.UserID}, nil
	}

	req := NewSearchRequest(userID, activityClass, ms.now())
	if err := ms.Requests.Create(ctx, req); err != nil {
		return nil, err
	}
	log.Printf("No partner waiting for %s, %s is now searching (request %s)", activityClass, userID, req.ID)
	return &SearchResult{RequestID: req.ID}, nil
}

// GetStatus reports the current state of a search request. Polling it has
// two side effects: a request past the fallback threshold is matched to a
// surrogate partner, and a matched request missing its meet link gets one
// attached.
func (ms *MatchService) GetStatus(ctx context.Context, requestID, userID string) (*StatusResult, error) {
	if requestID == "" || userID == "" {
		return nil, fmt.Errorf("%w: requestId and userId are required", ErrValidation)
	}

	req, err := ms.Requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.Status == models.SearchStatusSearching {
		createdAt, perr := time.Parse(time.RFC3339Nano, req.CreatedAt)
		stale := perr == nil && ms.now().Sub(createdAt) > fallbackThreshold
		if perr != nil {
			// An unreadable timestamp must not strand the request in
			// searching forever; treat it as past the threshold.
			log.Printf("Request %s has unparseable createdAt %q: %v", req.ID, req.CreatedAt, perr)
			stale = true
		}
		if stale {
			req, err = ms.fallbackMatch(ctx, req)
			if err != nil {
				return nil, err
			}
		}
	}

	result := &StatusResult{
		Status:        req.Status,
		ActivityClass: req.ActivityClass,
	}
	if req.Status != models.SearchStatusMatched {
		return result, nil
	}

	ownerLocation := ""
	if owner, oerr := ms.Profiles.GetUserProfile(ctx, req.UserID); oerr == nil {
		ownerLocation = owner.Location
	}
	result.MeetLocation = utils.VenueLocation(ownerLocation, req.ActivityClass)

	if req.MeetLinkID == nil {
		link, herr := ms.Links.AttachIfAbsent(ctx, req, result.MeetLocation)
		if herr != nil {
			return nil, herr
		}
		req.MeetLinkID = &link.ID
	}
	result.MeetLinkID = req.MeetLinkID

	if req.MatchedWithUserID != nil {
		result.MatchUserID = req.MatchedWithUserID
		partner, perr := ms.Profiles.GetUserProfile(ctx, *req.MatchedWithUserID)
		if perr != nil {
			// Dangling partner id: report the match without a snapshot.
			log.Printf("Partner %s for request %s not found: %v", *req.MatchedWithUserID, req.ID, perr)
			return result, nil
		}
		public := partner.Public()
		result.MatchUser = &public
		result.MatchName = partner.Name
		if result.MatchName == "" {
			result.MatchName = "Someone nearby"
		}
	}

	return result, nil
}

// fallbackMatch matches a request that waited too long to a surrogate
// partner. The claim is the same conditional transition real pairing uses,
// so a surrogate can never displace a real partner that arrived first, and
// concurrent pollers produce exactly one surrogate, one meet link and one
// mirrored request between them.
func (ms *MatchService) fallbackMatch(ctx context.Context, req *models.SearchRequest) (*models.SearchRequest, error) {
	idx := surrogateIndex(req.ID)
	name := surrogateNames[idx]

	location := "Nearby"
	if owner, err := ms.Profiles.GetUserProfile(ctx, req.UserID); err == nil && owner.Location != "" {
		location = owner.Location
	}

	surrogate, err := ms.Profiles.FindOrCreateSurrogate(ctx, name, models.UserProfile{
		Age:       24 + idx%5,
		Gender:    "other",
		Location:  location,
		Interests: []string{req.ActivityClass, "coffee"},
	})
	if err != nil {
		return nil, err
	}

	if err := ms.Requests.ClaimForMatch(ctx, req.ID, surrogate.UserID); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			// A real partner or a concurrent poller advanced it first.
			return ms.Requests.Get(ctx, req.ID)
		}
		return nil, err
	}

	req.Status = models.SearchStatusMatched
	req.MatchedWithUserID = &surrogate.UserID

	link, err := ms.Links.AttachIfAbsent(ctx, req, utils.VenueLocation(location, req.ActivityClass))
	if err != nil {
		return nil, err
	}

	mirror := models.SearchRequest{
		ID:                uuid.NewSHA1(uuid.NameSpaceOID, []byte("mirror:"+req.ID)).String(),
		UserID:            surrogate.UserID,
		ActivityClass:     req.ActivityClass,
		Status:            models.SearchStatusMatched,
		MatchedWithUserID: &req.UserID,
		MeetLinkID:        &link.ID,
		CreatedAt:         ms.now().Format(time.RFC3339Nano),
	}
	if err := ms.Requests.Create(ctx, mirror); err != nil {
		return nil, err
	}

	log.Printf("Fallback matched request %s to surrogate %s (%s)", req.ID, surrogate.UserID, name)
	return req, nil
}

func surrogateIndex(requestID string) int {
	h := fnv.New32a()
	h.Write([]byte(requestID))
	return int(h.Sum32() % uint32(len(surrogateNames)))
}
