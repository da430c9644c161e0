package anchorpds

import (
	"encoding/json"
	"fmt"

	"github.com/dropanchorapp/anchorpds/lexicon"
)

// CheckinRecord is the canonical, validated form of an
// app.dropanchor.checkin record. Optional fields are pointers so that
// "absent" survives a marshal/unmarshal round trip.
type CheckinRecord struct {
	Type          string       `json:"$type"`
	Text          string       `json:"text"`
	CreatedAt     string       `json:"createdAt"`
	Locations     LocationList `json:"locations,omitempty"`
	Category      *string      `json:"category,omitempty"`
	CategoryGroup *string      `json:"categoryGroup,omitempty"`
	CategoryIcon  *string      `json:"categoryIcon,omitempty"`
}

// LocationItem is one element of a check-in's locations array,
// discriminated on the wire by its $type tag.
type LocationItem interface {
	LocationType() string
}

// GeoLocation carries WGS84 coordinates as decimal strings. The textual
// representation is kept as-received to preserve precision across
// federation.
type GeoLocation struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

func (GeoLocation) LocationType() string { return lexicon.LocationGeoNSID }

func (g GeoLocation) MarshalJSON() ([]byte, error) {
	type alias GeoLocation
	return json.Marshal(struct {
		Type string `json:"$type"`
		alias
	}{Type: lexicon.LocationGeoNSID, alias: alias(g)})
}

// AddressLocation is a free-text postal address. Every field is optional;
// an address with zero fields is structurally valid.
type AddressLocation struct {
	Street     *string `json:"street,omitempty"`
	Locality   *string `json:"locality,omitempty"`
	Region     *string `json:"region,omitempty"`
	Country    *string `json:"country,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	Name       *string `json:"name,omitempty"`
}

func (AddressLocation) LocationType() string { return lexicon.LocationAddressNSID }

func (a AddressLocation) MarshalJSON() ([]byte, error) {
	type alias AddressLocation
	return json.Marshal(struct {
		Type string `json:"$type"`
		alias
	}{Type: lexicon.LocationAddressNSID, alias: alias(a)})
}

// LocationList deserializes a polymorphic locations array. Adding a new
// location kind means a new case here and a new variant type, nothing else.
type LocationList []LocationItem

func (l *LocationList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	items := make(LocationList, 0, len(raw))
	for _, r := range raw {
		var probe struct {
			Type string `json:"$type"`
		}
		if err := json.Unmarshal(r, &probe); err != nil {
			return err
		}

		switch probe.Type {
		case lexicon.LocationGeoNSID:
			var geo GeoLocation
			if err := json.Unmarshal(r, &geo); err != nil {
				return err
			}
			items = append(items, geo)
		case lexicon.LocationAddressNSID:
			var addr AddressLocation
			if err := json.Unmarshal(r, &addr); err != nil {
				return err
			}
			items = append(items, addr)
		default:
			return fmt.Errorf("unsupported location type: %s", probe.Type)
		}
	}

	*l = items
	return nil
}
