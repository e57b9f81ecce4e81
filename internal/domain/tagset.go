package domain

import (
	"errors"
	"fmt"
	"strings"
)

// MaxTagLength is the longest accepted tag, in bytes.
const MaxTagLength = 255

// ErrInvalidTag is returned when a tag is empty, whitespace-only, or longer
// than MaxTagLength bytes.
var ErrInvalidTag = errors.New("invalid tag")

// NormalizeTag trims surrounding whitespace and validates the result.
// Tags are case-sensitive byte strings; no folding is applied, so "Go" and
// "go" are distinct tags.
func NormalizeTag(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTag)
	}
	if len(tag) > MaxTagLength {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidTag, MaxTagLength)
	}
	return tag, nil
}

// ValidateTag reports whether tag is acceptable after normalization.
func ValidateTag(tag string) error {
	_, err := NormalizeTag(tag)
	return err
}

// NormalizeTags normalizes every tag and drops duplicates, keeping the first
// occurrence order. It fails on the first invalid tag.
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n, err := NormalizeTag(t)
		if err != nil {
			return nil, err
		}
		if indexOfTag(out, n) < 0 {
			out = append(out, n)
		}
	}
	return out, nil
}

// AddTag appends tag to the document's in-memory tag sequence if it is not
// already present. This is the local mutation mode: the change is not
// persisted. Reports true when the sequence changed.
func (d *Document) AddTag(tag string) (bool, error) {
	tag, err := NormalizeTag(tag)
	if err != nil {
		return false, err
	}
	if indexOfTag(d.Tags, tag) >= 0 {
		return false, nil
	}
	d.Tags = append(d.Tags, tag)
	return true, nil
}

// RemoveTag deletes tag from the document's in-memory tag sequence if present,
// preserving the order of the remaining tags. This is the local mutation mode:
// the change is not persisted. Reports true when the sequence changed.
func (d *Document) RemoveTag(tag string) (bool, error) {
	tag, err := NormalizeTag(tag)
	if err != nil {
		return false, err
	}
	i := indexOfTag(d.Tags, tag)
	if i < 0 {
		return false, nil
	}
	d.Tags = append(d.Tags[:i], d.Tags[i+1:]...)
	return true, nil
}

// HasTag reports whether tag is present in the document's in-memory tag
// sequence. The probe is exact; no normalization is applied.
func (d *Document) HasTag(tag string) bool {
	return indexOfTag(d.Tags, tag) >= 0
}

func indexOfTag(tags []string, tag string) int {
	for i, t := range tags {
		if t == tag {
			return i
		}
	}
	return -1
}
