package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/educhain/certchain/internal/constant"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// ParseTokenId accepts a positive base-10 integer no larger than 2^53-1.
func ParseTokenId(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: token ID is required", ErrInvalidTokenId)
	}

	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: token ID must be a positive integer", ErrInvalidTokenId)
		}
	}

	tokenId, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || tokenId > constant.MaxSafeTokenId {
		return 0, fmt.Errorf("%w: token ID is too large", ErrInvalidTokenId)
	}
	if tokenId <= 0 {
		return 0, fmt.Errorf("%w: token ID must be a positive integer", ErrInvalidTokenId)
	}

	return tokenId, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > constant.MaxListLimit {
		return constant.DefaultListLimit
	}
	return limit
}
