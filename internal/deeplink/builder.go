// Package deeplink formats the app-internal links clients use to open a
// piece of content.
package deeplink

import (
	"errors"
	"net/url"
	"strings"
)

// DefaultBase is the scheme and host every link is rooted at.
const DefaultBase = "asar://matna.app"

const (
	SourcePost     = "post"
	SourceCategory = "category"
	SourceExternal = "external"
)

const (
	paramSource = "source"
	paramID     = "id"
)

var ErrInvalidLink = errors.New("deeplink: invalid link")

// Builder formats links against a fixed base. The zero value uses DefaultBase.
type Builder struct {
	base string
}

// New returns a Builder rooted at base, or DefaultBase when base is blank.
func New(base string) Builder {
	return Builder{base: strings.TrimRight(strings.TrimSpace(base), "?")}
}

// Base reports the scheme and host the builder writes.
func (b Builder) Base() string {
	if b.base == "" {
		return DefaultBase
	}
	return b.base
}

// Build returns <base>?id=<id>&source=<source>. Inputs are query-escaped,
// never validated.
func (b Builder) Build(source, id string) string {
	query := url.Values{}
	query.Set(paramSource, source)
	query.Set(paramID, id)
	return b.Base() + "?" + query.Encode()
}

// BuildExternal tags an off-platform URL so the client opens it in a browser.
func (b Builder) BuildExternal(target string) string {
	return b.Build(SourceExternal, target)
}

// Parse extracts source and id from a link produced by Build.
func Parse(link string) (source, id string, err error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", "", errors.Join(ErrInvalidLink, err)
	}
	query := parsed.Query()
	if !query.Has(paramSource) || !query.Has(paramID) {
		return "", "", ErrInvalidLink
	}
	return query.Get(paramSource), query.Get(paramID), nil
}

var defaultBuilder = Builder{}

// Build formats a link with DefaultBase.
func Build(source, id string) string {
	return defaultBuilder.Build(source, id)
}

// BuildExternal formats an external link with DefaultBase.
func BuildExternal(target string) string {
	return defaultBuilder.BuildExternal(target)
}
