package worker

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidInput marks an asset locator that cannot be turned into an object
// key. No download is attempted when it is raised.
var ErrInvalidInput = errors.New("invalid input")

// ResolveObjectKey derives the storage key for the input file. An explicit
// key is the reliable path and wins outright; deriving the key from a public
// URL is a fallback, since URL conventions vary between custom domains and
// r2.dev-style hosts that embed the bucket name in the path.
func ResolveObjectKey(explicitKey, rawURL, bucket string) (string, error) {
	if explicitKey != "" {
		key := strings.TrimLeft(explicitKey, "/")
		if key == "" {
			return "", fmt.Errorf("%w: input key %q is empty after trimming leading slashes", ErrInvalidInput, explicitKey)
		}
		return key, nil
	}

	if rawURL == "" {
		return "", fmt.Errorf("%w: neither an input key nor an input URL was provided", ErrInvalidInput)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: cannot parse input URL %q: %v", ErrInvalidInput, rawURL, err)
	}

	key := strings.TrimLeft(parsed.Path, "/")
	if bucket != "" {
		key = strings.TrimPrefix(key, bucket+"/")
	}

	if key == "" {
		return "", fmt.Errorf("%w: could not derive an object key from URL %q; pass the key explicitly", ErrInvalidInput, rawURL)
	}
	return key, nil
}
