// Package workdrive is a minimal Zoho WorkDrive client covering the
// operations the bot needs: folder listing, file download, upload, delete,
// and name-based lookups. Authentication uses the OAuth2 refresh-token
// grant; an expired access token (HTTP 401) is refreshed once and the
// request retried before the error is surfaced.
package workdrive

// Item is one entry of a WorkDrive folder listing.
type Item struct {
	// ID is the WorkDrive resource id.
	ID string

	// Name is the display name, including any file extension.
	Name string

	// Type is the WorkDrive resource type, "file" or "folder".
	Type string
}

// IsFolder reports whether the item is a folder.
func (i Item) IsFolder() bool {
	return i.Type == "folder"
}

// Config holds the credentials and endpoint for one WorkDrive tenant.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string

	// APIDomain is the WorkDrive API base, e.g. "https://www.zohoapis.com".
	APIDomain string

	// TokenURL overrides the Zoho accounts token endpoint. Empty means the
	// production endpoint; tests point this at a local server.
	TokenURL string
}
