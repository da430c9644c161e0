package lexicon

const (
	// CheckinNSID is the record collection this server accepts.
	CheckinNSID string = "app.dropanchor.checkin"

	LocationGeoNSID     string = "community.lexicon.location.geo"
	LocationAddressNSID string = "community.lexicon.location.address"
)
