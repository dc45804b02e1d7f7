package model

import (
	"encoding/json"
	"fmt"
)

// CategoryRef is a category reference as returned by the API: either a bare
// id string or an embedded Category object, depending on the endpoint.
// Consumers resolve through ID and Label instead of branching on shape.
type CategoryRef struct {
	id       string
	embedded *Category
}

// CategoryByID builds a reference holding only the id.
func CategoryByID(id string) CategoryRef {
	return CategoryRef{id: id}
}

// CategoryEmbedded builds a reference carrying the full category.
func CategoryEmbedded(c Category) CategoryRef {
	return CategoryRef{id: c.ID, embedded: &c}
}

// ID returns the referenced category id regardless of shape.
func (r CategoryRef) ID() string {
	return r.id
}

// Label returns the category name when embedded, the id otherwise.
func (r CategoryRef) Label() string {
	if r.embedded != nil && r.embedded.Name != "" {
		return r.embedded.Name
	}
	return r.id
}

// Embedded returns the embedded category, or nil for bare-id references.
func (r CategoryRef) Embedded() *Category {
	if r.embedded == nil {
		return nil
	}
	c := *r.embedded
	return &c
}

// IsZero reports whether the reference points at nothing.
func (r CategoryRef) IsZero() bool {
	return r.id == "" && r.embedded == nil
}

func (r CategoryRef) MarshalJSON() ([]byte, error) {
	if r.embedded != nil {
		return json.Marshal(r.embedded)
	}
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}

func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = CategoryRef{}
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = CategoryRef{id: id}
		return nil
	}
	var c Category
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("category reference is neither id nor object: %w", err)
	}
	*r = CategoryRef{id: c.ID, embedded: &c}
	return nil
}
