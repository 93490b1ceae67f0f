package ipfs

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ipfs/go-cid"
)

const uriScheme = "ipfs://"

var (
	ErrEmptyCID   = errors.New("empty cid")
	ErrInvalidCID = errors.New("invalid cid")

	cidShape = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// ValidateCID checks that s looks like a content identifier and returns it trimmed, never re-encoded.
// Without strict, an alphanumeric string that does not decode is accepted.
func ValidateCID(s string, strict bool) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyCID
	}

	if !cidShape.MatchString(s) {
		return "", fmt.Errorf("%w: %q is not alphanumeric", ErrInvalidCID, s)
	}

	if _, err := cid.Decode(s); err != nil && strict {
		return "", fmt.Errorf("%w: %v", ErrInvalidCID, err)
	}

	return s, nil
}

func TokenURI(c string) string {
	return uriScheme + c
}

// ExtractCID accepts "ipfs://<cid>", a gateway url containing "/ipfs/<cid>" or a bare cid.
func ExtractCID(tokenURI string) (string, error) {
	tokenURI = strings.TrimSpace(tokenURI)
	if tokenURI == "" {
		return "", errors.New("token uri is required")
	}

	if strings.HasPrefix(tokenURI, uriScheme) {
		return strings.TrimPrefix(tokenURI, uriScheme), nil
	}

	if i := strings.LastIndex(tokenURI, "/ipfs/"); i >= 0 {
		return tokenURI[i+len("/ipfs/"):], nil
	}

	return tokenURI, nil
}
