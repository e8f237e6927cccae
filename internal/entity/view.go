package entity

import "time"

// UnknownTag is used for enrichment values that could not be resolved.
const UnknownTag = "Unknown"

// ViewMetadata describes the visitor behind a view. Every field is best effort.
type ViewMetadata struct {
	UserAgent       string
	DeviceType      string
	Browser         string
	OperatingSystem string
	Country         string
	Region          string
	City            string
	Referrer        string
	SessionID       string
}

// ViewEvent is an append-only record of one redeemed credential.
type ViewEvent struct {
	ID                    int64
	LinkID                int64
	ClientID              string
	ViewedAt              time.Time
	Metadata              ViewMetadata
	TimeToCompleteSeconds *int
	Completed             bool
}

// RecordResult is the outcome of recording a view. A rejected view is not an error.
type RecordResult struct {
	Recorded  bool
	Message   string
	ViewCount int64
}

// Location is the geographic tag resolved from a client address.
type Location struct {
	Country string
	Region  string
	City    string
}

// UnknownLocation is returned when the address cannot be resolved.
func UnknownLocation() Location {
	return Location{Country: UnknownTag, Region: UnknownTag, City: UnknownTag}
}

// Device is the device tag parsed from a user agent.
type Device struct {
	Type            string
	Browser         string
	OperatingSystem string
}

// UnknownDevice is returned when no user agent was sent.
func UnknownDevice() Device {
	return Device{Type: UnknownTag, Browser: UnknownTag, OperatingSystem: UnknownTag}
}
