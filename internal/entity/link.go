// Package entity defines the entities and errors used in the application.
// It includes the Link struct, which represents a monetized short link, the view
// events recorded against it, the rate limiting policy and the revenue rates,
// along with the relevant error definitions.
package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrShortCodeExists is returned when attempting to create a link with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrLinkNotFound is returned when a link with the specified short code or id cannot be found.
	ErrLinkNotFound = errors.New("link not found")
	// ErrInvalidURL is returned when the URL to shorten is empty, too long or not an http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrExhaustedRetries is returned when no unique short code could be generated.
	// It signals a capacity or configuration problem and must not be retried silently.
	ErrExhaustedRetries = errors.New("exhausted retries generating unique short code")
	// ErrForbidden is returned when an owner tries to modify a link they do not own.
	ErrForbidden = errors.New("forbidden")
)

// MaxURLLength is the longest original URL accepted for shortening.
const MaxURLLength = 2048

// Link represents a shortened, monetized URL.
type Link struct {
	ID          int64      // ID is the unique identifier of the link in the database.
	ShortCode   string     // ShortCode is the public, immutable code resolving to the original URL.
	OriginalURL string     // OriginalURL is the destination the visitor is redirected to.
	OwnerID     *uuid.UUID // OwnerID is the user earning from the link; nil for anonymous links.
	LinkStats              // LinkStats contains the view counters and accrued earnings.
	IsActive    bool       // IsActive is false once the link has been soft-removed.
	CreatedAt   time.Time  // CreatedAt is the timestamp when the link was created.
	UpdatedAt   time.Time  // UpdatedAt is the timestamp when the link was last updated.
}

// LinkStats contains statistics related to a link.
type LinkStats struct {
	ViewCount          int64           // ViewCount is the number of recorded, monetized views.
	DuplicateViewCount int64           // DuplicateViewCount is the number of views rejected by the rate limiter.
	AccruedEarnings    decimal.Decimal // AccruedEarnings is derived from ViewCount and the owner's effective rate.
}
