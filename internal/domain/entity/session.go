// Package entity contains the core business objects of the project.
package entity

import "time"

// Session is the auth provider's proof of authentication for a user. Its
// renewal and expiry lifecycle belongs to the provider; consumers hold a
// reference and exchange the refresh token for new access tokens.
type Session struct {
	AccessToken  string    // Short-lived bearer token presented on API calls.
	RefreshToken string    // Long-lived token exchanged for new access tokens.
	ExpiresAt    time.Time // When the access token expires.
	User         User      // The identity this session authenticates.
}
