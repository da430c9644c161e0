package domain

const (
	RequesterDidCtxKey    = "anchor-requesterDid"
	RequesterHandleCtxKey = "anchor-requesterHandle"
)

// CheckinChannel is the pub/sub channel accepted check-ins are announced on.
const CheckinChannel = "checkin.created"

// MaxGlobalFeedLimit is the hard cap on global feed page size. It is an
// abuse-prevention measure and must not be bypassed.
const MaxGlobalFeedLimit = 100

// DefaultFeedLimit is applied when a feed request omits the limit parameter.
const DefaultFeedLimit = 50
