// Package types provides type definitions for the people-map data that flows through the pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "html"

// Placeholder values used when optional CMS fields are absent.
const (
	PlaceholderDescription = "Profile details are coming soon."
	PlaceholderImagePath   = "/images/person-placeholder.png"
)

// Raw document keys as stored by the CMS.
const (
	FieldID          = "_id"
	FieldType        = "_type"
	FieldName        = "name"
	FieldRole        = "role"
	FieldDescription = "description"
	FieldPhoto       = "photo"
	FieldImage       = "image"
	FieldIsCandidate = "isCandidate"
	FieldPosition    = "position"
	FieldRelations   = "relations"
	FieldOrder       = "order"
	FieldShowOnMap   = "showOnMap"
)

// PersonRecord is a person document exactly as the content source returned it.
// Values are whatever the JSON decoder produced; nothing is guaranteed to be present.
type PersonRecord map[string]any

// ID returns the raw identifier if it is a string.
func (r PersonRecord) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// Position is a 2D coordinate on the map canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NormalizedPerson is a validated person with every optional field defaulted.
type NormalizedPerson struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Role        string   `json:"role"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Position    Position `json:"position"`
	IsCandidate bool     `json:"is_candidate"`
	Relations   []string `json:"relations"`
	Order       int      `json:"order"`
}

// Record converts the person back into raw document form.
// The description is HTML-escaped the way the CMS stores rich text, so
// normalizing the returned record yields the same person again.
func (p NormalizedPerson) Record() PersonRecord {
	relations := make([]any, len(p.Relations))
	for i, id := range p.Relations {
		relations[i] = id
	}
	return PersonRecord{
		FieldID:          p.ID,
		FieldName:        p.Name,
		FieldRole:        p.Role,
		FieldDescription: html.EscapeString(p.Description),
		FieldImage:       p.ImageURL,
		FieldIsCandidate: p.IsCandidate,
		FieldPosition:    map[string]any{"x": p.Position.X, "y": p.Position.Y},
		FieldRelations:   relations,
		FieldOrder:       p.Order,
	}
}
