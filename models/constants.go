package models

// ✅ Search request statuses. A request only ever moves searching -> matched.
const (
	SearchStatusSearching = "searching"
	SearchStatusMatched   = "matched"
)

// ✅ Selection modes for the open "meet someone" flow
const (
	MeetModeStandard       = "standard"
	MeetModeSurpriseLow    = "surprise-low"
	MeetModeSurpriseMedium = "surprise-medium"
	MeetModeSurpriseHigh   = "surprise-high"
)

// IsValidMeetMode reports whether mode is one of the supported selection modes.
func IsValidMeetMode(mode string) bool {
	switch mode {
	case MeetModeStandard, MeetModeSurpriseLow, MeetModeSurpriseMedium, MeetModeSurpriseHigh:
		return true
	}
	return false
}
