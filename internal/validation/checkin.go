// Package validation turns untyped record input into a canonical
// CheckinRecord or a structured rejection. It performs no I/O.
package validation

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/dropanchorapp/anchorpds"
	"github.com/dropanchorapp/anchorpds/lexicon"
)

// Rejection codes. Callers receive the first violated rule, not an
// aggregate.
const (
	CodeNotAnObject             = "NotAnObject"
	CodeMissingText             = "MissingText"
	CodeTextTooLong             = "TextTooLong"
	CodeMissingCreatedAt        = "MissingCreatedAt"
	CodeInvalidTimestamp        = "InvalidTimestamp"
	CodeLocationsNotArray       = "LocationsNotArray"
	CodeUnsupportedLocationType = "UnsupportedLocationType"
	CodeMissingLatitude         = "MissingLatitude"
	CodeInvalidLatitude         = "InvalidLatitude"
	CodeLatitudeOutOfRange      = "LatitudeOutOfRange"
	CodeMissingLongitude        = "MissingLongitude"
	CodeInvalidLongitude        = "InvalidLongitude"
	CodeLongitudeOutOfRange     = "LongitudeOutOfRange"
	CodeInvalidAddressField     = "InvalidAddressField"
	CodeInvalidCategory         = "InvalidCategory"
	CodeInvalidCategoryGroup    = "InvalidCategoryGroup"
	CodeInvalidCategoryIcon     = "InvalidCategoryIcon"
)

const (
	maxTextLength          = 300
	maxCategoryLength      = 50
	maxCategoryGroupLength = 50
	maxCategoryIconLength  = 10
)

// Error is a rejection with a stable machine code and a human message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func reject(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) bool {
	for _, layout := range timestampFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// Validate converts untyped input into a canonical CheckinRecord. Rules are
// evaluated in order and the first failure wins. The output contains only
// recognized fields; the $type tag is recomputed, never passed through.
func Validate(input any) (*anchorpds.CheckinRecord, error) {
	obj, ok := input.(map[string]any)
	if !ok || obj == nil {
		return nil, reject(CodeNotAnObject, "record must be an object")
	}

	text, ok := obj["text"].(string)
	if !ok || text == "" {
		return nil, reject(CodeMissingText, "text is required and must be a non-empty string")
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return nil, reject(CodeTextTooLong, "text must be at most %d characters", maxTextLength)
	}

	createdAt, ok := obj["createdAt"].(string)
	if !ok || createdAt == "" {
		return nil, reject(CodeMissingCreatedAt, "createdAt is required and must be a string")
	}
	if !parseTimestamp(createdAt) {
		return nil, reject(CodeInvalidTimestamp, "createdAt is not a valid timestamp: %s", createdAt)
	}

	record := &anchorpds.CheckinRecord{
		Type:      lexicon.CheckinNSID,
		Text:      text,
		CreatedAt: createdAt,
	}

	if rawLocations, present := obj["locations"]; present {
		items, err := validateLocations(rawLocations)
		if err != nil {
			return nil, err
		}
		// Zero accepted elements canonicalize to an absent field.
		if len(items) > 0 {
			record.Locations = items
		}
	}

	category, err := validateOptionalString(obj, "category", maxCategoryLength, CodeInvalidCategory)
	if err != nil {
		return nil, err
	}
	record.Category = category

	categoryGroup, err := validateOptionalString(obj, "categoryGroup", maxCategoryGroupLength, CodeInvalidCategoryGroup)
	if err != nil {
		return nil, err
	}
	record.CategoryGroup = categoryGroup

	categoryIcon, err := validateOptionalString(obj, "categoryIcon", maxCategoryIconLength, CodeInvalidCategoryIcon)
	if err != nil {
		return nil, err
	}
	record.CategoryIcon = categoryIcon

	return record, nil
}

func validateLocations(raw any) (anchorpds.LocationList, error) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, reject(CodeLocationsNotArray, "locations must be an array")
	}

	items := make(anchorpds.LocationList, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			return nil, reject(CodeUnsupportedLocationType, "location item must be an object")
		}

		tag, _ := m["$type"].(string)
		switch tag {
		case lexicon.LocationGeoNSID:
			geo, err := validateGeo(m)
			if err != nil {
				return nil, err
			}
			items = append(items, *geo)
		case lexicon.LocationAddressNSID:
			addr, err := validateAddress(m)
			if err != nil {
				return nil, err
			}
			items = append(items, *addr)
		default:
			return nil, reject(CodeUnsupportedLocationType, "unsupported location type: %s", tag)
		}
	}

	return items, nil
}

func validateGeo(m map[string]any) (*anchorpds.GeoLocation, error) {
	lat, ok := m["latitude"].(string)
	if !ok || lat == "" {
		return nil, reject(CodeMissingLatitude, "geo location requires a latitude string")
	}
	latValue, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, reject(CodeInvalidLatitude, "latitude is not a number: %s", lat)
	}
	if latValue < -90 || latValue > 90 {
		return nil, reject(CodeLatitudeOutOfRange, "latitude must be within [-90, 90]: %s", lat)
	}

	lng, ok := m["longitude"].(string)
	if !ok || lng == "" {
		return nil, reject(CodeMissingLongitude, "geo location requires a longitude string")
	}
	lngValue, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, reject(CodeInvalidLongitude, "longitude is not a number: %s", lng)
	}
	if lngValue < -180 || lngValue > 180 {
		return nil, reject(CodeLongitudeOutOfRange, "longitude must be within [-180, 180]: %s", lng)
	}

	return &anchorpds.GeoLocation{Latitude: lat, Longitude: lng}, nil
}

var addressFields = []string{"street", "locality", "region", "country", "postalCode", "name"}

func validateAddress(m map[string]any) (*anchorpds.AddressLocation, error) {
	values := make(map[string]*string, len(addressFields))
	for _, field := range addressFields {
		raw, present := m[field]
		if !present {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return nil, reject(CodeInvalidAddressField, "address field %s must be a string", field)
		}
		values[field] = &s
	}

	return &anchorpds.AddressLocation{
		Street:     values["street"],
		Locality:   values["locality"],
		Region:     values["region"],
		Country:    values["country"],
		PostalCode: values["postalCode"],
		Name:       values["name"],
	}, nil
}

func validateOptionalString(obj map[string]any, field string, maxLen int, code string) (*string, error) {
	raw, present := obj[field]
	if !present {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil, reject(code, "%s must be a non-empty string", field)
	}
	if utf8.RuneCountInString(s) > maxLen {
		return nil, reject(code, "%s must be at most %d characters", field, maxLen)
	}
	return &s, nil
}
