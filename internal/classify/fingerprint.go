package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// maxFingerprintInput truncates the hashed text. The fingerprint is a
// best-effort content hash for cache keying, not a cryptographic identity.
const maxFingerprintInput = 4096

// Fingerprint derives a stable identifier from an error's concrete type,
// message, and wrapped cause chain.
func Fingerprint(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%T|%s", err, err.Error())
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(&b, "|%T", cause)
	}

	input := b.String()
	if len(input) > maxFingerprintInput {
		input = input[:maxFingerprintInput]
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(input))
}
