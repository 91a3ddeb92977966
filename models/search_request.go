package models

// SearchRequest is one user's attempt to find a partner for an activity class.
// Status only ever transitions searching -> matched, and the transition is a
// conditional update so concurrent claimants cannot both consume it.
type SearchRequest struct {
	ID                string  `dynamodbav:"id" json:"id"`                                               // ✅ Partition Key
	UserID            string  `dynamodbav:"userId" json:"userId"`                                       // Owner of the request
	ActivityClass     string  `dynamodbav:"activityClass" json:"activityClass"`                         // e.g. "Tennis"
	Status            string  `dynamodbav:"status" json:"status"`                                       // searching, matched
	MatchedWithUserID *string `dynamodbav:"matchedWithUserId,omitempty" json:"matchedWithUserId,omitempty"` // Set when matched
	MeetLinkID        *string `dynamodbav:"meetLinkId,omitempty" json:"meetLinkId,omitempty"`           // Attached at pairing time, self-healed if missing
	CreatedAt         string  `dynamodbav:"createdAt" json:"createdAt"`                                 // RFC3339Nano, used for FIFO ordering and the fallback timer
}

// SearchRequestsTable is the DynamoDB table name for search requests
const SearchRequestsTable = "SearchRequests"
