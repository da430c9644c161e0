package anchorpds

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// InvalidURIError means the caller supplied something that is not an at://
// URI. It is client input, not an internal failure.
type InvalidURIError struct {
	Reason string
}

func (e InvalidURIError) Error() string {
	if e.Reason == "" {
		return "invalid at uri"
	}
	return e.Reason
}

func (e InvalidURIError) Is(target error) bool {
	_, ok := target.(InvalidURIError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidURIError)
	return ok
}

// ErrInvalidURI is the sentinel error for malformed at:// URIs.
var ErrInvalidURI = InvalidURIError{}

// ParseATURI splits an at:// URI into identity, collection and record key.
// The input may be percent-escaped (clients pass URIs as query parameters).
func ParseATURI(escaped string) (string, string, string, error) {
	uri, err := url.QueryUnescape(escaped)
	if err != nil {
		return "", "", "", InvalidURIError{Reason: "invalid uri encoding"}
	}

	rest, ok := strings.CutPrefix(uri, "at://")
	if !ok {
		return "", "", "", InvalidURIError{Reason: "unsupported uri scheme"}
	}

	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", InvalidURIError{Reason: "invalid at uri"}
	}

	return parts[0], parts[1], parts[2], nil
}

// ComposeATURI builds the protocol address of a record. It is a pure
// function of its arguments; two calls with identical arguments are
// byte-identical.
func ComposeATURI(did, collection, rkey string) string {
	return "at://" + did + "/" + collection + "/" + rkey
}

func IsDID(s string) bool {
	parts := strings.SplitN(s, ":", 3)
	return len(parts) == 3 && parts[0] == "did" && parts[1] != "" && parts[2] != ""
}

// NewRecordKey generates a random record key. Keys are globally unique so
// client-generated keys from different owners cannot collide in storage.
func NewRecordKey() string {
	return uuid.NewString()
}

// NewCID derives a content identifier from the canonical JSON encoding of
// the record. Callers treat it as opaque.
func NewCID(record any) (string, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	sum := xxh3.Hash128(body)
	return fmt.Sprintf("bafk%016x%016x", sum.Hi, sum.Lo), nil
}
