package models

// MeetLink is the durable rendezvous record shared by two matched parties.
// Immutable once created; downstream chat features consume its id as an
// opaque key.
type MeetLink struct {
	ID              string `dynamodbav:"id" json:"id"`                                           // ✅ Partition Key
	PartyAID        string `dynamodbav:"partyAId" json:"partyAId"`                               // First participant
	PartyBID        string `dynamodbav:"partyBId" json:"partyBId"`                               // Second participant
	Location        string `dynamodbav:"location" json:"location"`                               // Derived display location
	DurationMinutes *int   `dynamodbav:"durationMinutes,omitempty" json:"durationMinutes,omitempty"` // Only set by the open meet flow
	CreatedAt       string `dynamodbav:"createdAt" json:"createdAt"`                             // Timestamp of creation
}

// MeetLinksTable is the DynamoDB table name for meet links
const MeetLinksTable = "MeetLinks"
