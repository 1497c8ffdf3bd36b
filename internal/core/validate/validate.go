// Package validate holds parameter validation shared by the place, event and
// user use cases, together with the sentinel errors the HTTP layer maps to
// 400 responses.
package validate

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidPosition indicates coordinates outside the valid ranges.
	ErrInvalidPosition = errors.New("invalid geographic position")

	// ErrBbox indicates a malformed bounding box.
	ErrBbox = errors.New("invalid bounding box")

	// ErrEmail indicates a malformed e-mail address.
	ErrEmail = errors.New("invalid email address")

	// ErrPhone indicates a missing phone number where one is required.
	ErrPhone = errors.New("invalid phone number")

	// ErrURL indicates a URL that could not be parsed.
	ErrURL = errors.New("invalid URL")

	// ErrContact indicates missing contact details where they are required.
	ErrContact = errors.New("missing contact details")

	// ErrRegistrationType indicates an unknown event registration type.
	ErrRegistrationType = errors.New("invalid registration type")

	// ErrCreatorEmail indicates a missing event creator e-mail address.
	ErrCreatorEmail = errors.New("missing creator email address")

	// ErrInvalidOpeningHours indicates unparseable opening hours.
	ErrInvalidOpeningHours = errors.New("invalid opening hours")

	// ErrLicense indicates a missing license on a new place.
	ErrLicense = errors.New("missing license")

	// ErrTitle indicates a missing or empty title.
	ErrTitle = errors.New("missing title")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email checks the basic shape of an e-mail address.
func Email(s string) error {
	if !emailPattern.MatchString(s) {
		return ErrEmail
	}
	return nil
}

// URL leniently parses a URL parameter. Bare hosts without a scheme are
// accepted and prefixed with https, mirroring how submitted homepage and
// image links have historically been stored. Returns the normalized URL.
func URL(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", ErrURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrURL
	}
	return u.String(), nil
}

// OpeningHours checks an opening hours description. The format is opaque to
// the backend, but an all-whitespace value is rejected.
func OpeningHours(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrInvalidOpeningHours
	}
	return nil
}
