package utils

import "fmt"

// VenueLocation derives the rendezvous hint shown to an activity pairing.
func VenueLocation(userLocation, activityClass string) string {
	if userLocation != "" {
		return fmt.Sprintf("Near %s - find a %s venue", userLocation, activityClass)
	}
	return fmt.Sprintf("Find a %s venue near you", activityClass)
}

// JoinLocations merges both parties' locations for the open meet flow.
func JoinLocations(a, b string) string {
	switch {
	case a != "" && b != "":
		return a + " & " + b
	case a != "":
		return a
	case b != "":
		return b
	}
	return "Meet up"
}
