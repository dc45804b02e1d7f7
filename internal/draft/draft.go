// Package draft stages unpersisted working copies of catalog entities
// during create and edit. A draft has no server identity until committed;
// cancel or a successful commit destroys it, a failed commit keeps it so
// the operator can retry without re-entering anything.
package draft

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tavolaapp/tavola-admin/internal/model"
)

// Attachment is a locally selected binary not yet uploaded. PreviewID is a
// locally generated handle for the presentation layer; no network call is
// involved in selecting a file.
type Attachment struct {
	Path      string
	FileName  string
	Content   []byte
	PreviewID string
}

// Draft is a staged copy of a Category, MenuItem, or Ingredient. PriceInput
// keeps the operator's raw text so invalid input can be rejected at commit
// instead of being coerced.
type Draft struct {
	Kind        model.Kind
	ID          string
	Name        string
	Description string
	PriceInput  string
	CategoryID  string
	ImageURL    string
	Attachment  *Attachment
}

// New returns an empty draft for creating an entity of the given kind.
func New(kind model.Kind) *Draft {
	return &Draft{Kind: kind}
}

// FromCategory stages an existing category for editing.
func FromCategory(c model.Category) *Draft {
	return &Draft{
		Kind:        model.KindCategory,
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
	}
}

// FromMenuItem stages an existing menu item for editing.
func FromMenuItem(m model.MenuItem) *Draft {
	return &Draft{
		Kind:        model.KindMenuItem,
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		PriceInput:  model.FormatPrice(m.Price),
		CategoryID:  m.Category.ID(),
		ImageURL:    m.Image,
	}
}

// FromIngredient stages an existing ingredient for editing.
func FromIngredient(i model.Ingredient) *Draft {
	return &Draft{
		Kind:       model.KindIngredient,
		ID:         i.ID,
		Name:       i.Name,
		PriceInput: model.FormatPrice(i.Price),
		ImageURL:   i.Picture,
	}
}

// Patch is a partial field update; nil fields are left alone.
type Patch struct {
	Name        *string
	Description *string
	PriceInput  *string
	CategoryID  *string
}

// Apply merges the patch into the draft. It never touches the cached
// collections.
func (d *Draft) Apply(p Patch) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.PriceInput != nil {
		d.PriceInput = *p.PriceInput
	}
	if p.CategoryID != nil {
		d.CategoryID = *p.CategoryID
	}
}

// Attach stores a locally selected file and mints a preview id.
func (d *Draft) Attach(path string, content []byte) {
	d.Attachment = &Attachment{
		Path:      path,
		FileName:  filepath.Base(path),
		Content:   content,
		PreviewID: uuid.NewString(),
	}
}

// ClearAttachment drops the unsaved file selection.
func (d *Draft) ClearAttachment() {
	d.Attachment = nil
}

// IsNew reports whether the draft has no server identity yet.
func (d *Draft) IsNew() bool {
	return d.ID == ""
}
