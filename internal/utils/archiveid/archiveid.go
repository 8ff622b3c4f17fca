package archiveid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	viewPrefix   = "view_"
	handlePrefix = "dl_"
	bundlePrefix = "bnd_"
)

var (
	entropyMu   sync.Mutex
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

func newID(prefix string) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	return prefix + strings.ToLower(id.String())
}

// NewView returns a view_* ULID string.
func NewView() string { return newID(viewPrefix) }

// NewHandle returns a dl_* ULID string.
func NewHandle() string { return newID(handlePrefix) }

// NewBundle returns a bnd_* ULID string.
func NewBundle() string { return newID(bundlePrefix) }

// IsValid reports whether value is a prefixed ULID of any known kind.
func IsValid(value string) bool {
	_, err := Parse(value)
	return err == nil
}

// Parse strips the kind prefix and returns the ULID.
func Parse(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	for _, prefix := range []string{viewPrefix, handlePrefix, bundlePrefix} {
		if strings.HasPrefix(value, prefix) {
			return ulid.Parse(strings.ToUpper(strings.TrimPrefix(value, prefix)))
		}
	}
	return ulid.ULID{}, ulid.ErrDataSize
}
