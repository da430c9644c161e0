package domain

import (
	"github.com/dropanchorapp/anchorpds"
)

// StoredCheckin is a validated check-in plus its server-assigned identity.
// The URI is always derived from (AuthorDid, collection, ID); it is
// persisted for query convenience, never diverging from that derivation.
type StoredCheckin struct {
	ID        string `json:"id"`
	URI       string `json:"uri"`
	Cid       string `json:"cid"`
	AuthorDid string `json:"authorDid"`

	anchorpds.CheckinRecord
}

// Identity is a protocol user resolved from a bearer token.
type Identity struct {
	DID    string  `json:"did"`
	Handle *string `json:"handle,omitempty"`
}

// UserSettings holds per-owner preferences. A missing row means the
// defaults below.
type UserSettings struct {
	DID             string `json:"did"`
	EnableFeedPosts bool   `json:"enableFeedPosts"`
}

// DefaultSettings returns the settings implied by an absent row.
func DefaultSettings(did string) UserSettings {
	return UserSettings{DID: did, EnableFeedPosts: true}
}

// CheckinEvent is broadcast when a check-in is accepted.
type CheckinEvent struct {
	URI       string `json:"uri"`
	Cid       string `json:"cid"`
	AuthorDid string `json:"authorDid"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}
