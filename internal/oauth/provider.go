package oauth

import "context"

// UserInfo is the provider-agnostic profile fetched after a successful
// code exchange. ProviderUserID is the only field guaranteed non-empty.
type UserInfo struct {
	Provider       string
	ProviderUserID string
	Nickname       string
	Email          string
	ProfileImage   string
}

// Provider abstracts one external identity provider. Exchange performs
// the two server-to-server calls of the authorization-code flow: code
// for access token, then access token for profile. Neither call is
// retried; any failure aborts the whole flow.
type Provider interface {
	Name() string
	LoginURL(state string) string
	Exchange(ctx context.Context, code string) (*UserInfo, error)
}
