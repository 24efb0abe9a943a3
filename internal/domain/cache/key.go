package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/kailas-cloud/similar/internal/domain/options"
)

// Input is the material a result cache key is derived from.
type Input struct {
	// Version is the scoring algorithm version; bumping it orphans every older entry.
	Version     string
	ReferenceID string
	Options     options.Options
	// Locale is the active language, only relevant when the language filter is on.
	Locale string
	// Index lists the candidate ids of an explicit index; nil means the default sibling pool.
	Index []string
}

// Derive returns the hex sha256 fingerprint of the input.
// Semantically equal options always produce the same key.
func Derive(in Input) (string, error) {
	opts, err := in.Options.Canonical()
	if err != nil {
		return "", err
	}

	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	write(in.Version)
	write(in.ReferenceID)
	h.Write(opts)
	h.Write([]byte{0})

	if in.Options.LanguageFilter {
		write(in.Locale)
	} else {
		write("")
	}

	// Index order decides tie order, so it is hashed as given.
	if in.Index == nil {
		write("siblings")
	} else {
		write("index\x01" + strings.Join(in.Index, "\x01"))
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
