package models

// UserProfile defines the structure for user profiles. The matching core only
// reads these records; the profile subsystem owns them. The one exception is
// surrogate creation, which is additive-only.
type UserProfile struct {
	UserID       string   `dynamodbav:"userId" json:"userId"`                             // ✅ Partition Key
	Name         string   `dynamodbav:"name,omitempty" json:"name,omitempty"`             // Display name
	Age          int      `dynamodbav:"age,omitempty" json:"age,omitempty"`               // Age in years
	Gender       string   `dynamodbav:"gender,omitempty" json:"gender,omitempty"`         // Gender
	Location     string   `dynamodbav:"location,omitempty" json:"location,omitempty"`     // Free-form location string
	Interests    []string `dynamodbav:"interests,omitempty" json:"interests,omitempty"`   // Interest tags from onboarding
	Likes        []string `dynamodbav:"likes,omitempty" json:"likes,omitempty"`           // Likes from onboarding
	Dislikes     []string `dynamodbav:"dislikes,omitempty" json:"dislikes,omitempty"`     // Dislikes from onboarding
	ProfileReady bool     `dynamodbav:"profileReady" json:"profileReady"`                 // Onboarding complete
	IsSurrogate  bool     `dynamodbav:"isSurrogate,omitempty" json:"isSurrogate,omitempty"` // Synthetic partner record
}

// PublicProfile is the partner-facing subset of a profile returned alongside
// match status.
type PublicProfile struct {
	UserID    string   `json:"userId"`
	Name      string   `json:"name,omitempty"`
	Age       int      `json:"age,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Location  string   `json:"location,omitempty"`
	Interests []string `json:"interests,omitempty"`
	Likes     []string `json:"likes,omitempty"`
	Dislikes  []string `json:"dislikes,omitempty"`
}

// Public returns the partner-facing view of the profile.
func (p UserProfile) Public() PublicProfile {
	return PublicProfile{
		UserID:    p.UserID,
		Name:      p.Name,
		Age:       p.Age,
		Gender:    p.Gender,
		Location:  p.Location,
		Interests: p.Interests,
		Likes:     p.Likes,
		Dislikes:  p.Dislikes,
	}
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"
