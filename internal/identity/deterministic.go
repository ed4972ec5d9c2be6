package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PriceItemUUID keys a quote by feed group and symbol so every sync
// rewrites the same row ids.
func PriceItemUUID(group, symbol string) uuid.UUID {
	return UUID("asar:price_item:" + strings.ToLower(strings.TrimSpace(group)) + ":" + strings.ToUpper(strings.TrimSpace(symbol)))
}

// PageUUID keys a seeded page by slug and language.
func PageUUID(slug, language string) uuid.UUID {
	return UUID("asar:page:" + strings.ToLower(strings.TrimSpace(language)) + ":" + strings.TrimSpace(slug))
}
