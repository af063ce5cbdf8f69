// Package normalize turns loosely typed CMS person documents into validated people.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/peoplemap/internal/fetch"
	"github.com/jonathan/peoplemap/internal/types"
	"github.com/ohler55/ojg/jp"
	"github.com/spf13/cast"
)

// Options configures defaults and asset resolution.
type Options struct {
	PlaceholderImage       string
	PlaceholderDescription string
	// ProjectID and Dataset let asset references be turned into CDN URLs.
	ProjectID string
	Dataset   string
	// AssetBaseURL defaults to the hosted image CDN.
	AssetBaseURL string
}

// DefaultOptions returns the fixed placeholders and no asset resolution.
func DefaultOptions() Options {
	return Options{
		PlaceholderImage:       types.PlaceholderImagePath,
		PlaceholderDescription: types.PlaceholderDescription,
		AssetBaseURL:           "https://cdn.sanity.io/images",
	}
}

// Normalizer converts raw records. It holds no per-record state and is safe for concurrent use.
type Normalizer struct {
	opts     Options
	validate *validator.Validate
}

var blockTextPath = jp.MustParseString("$.children[*].text")

// New creates a Normalizer, filling empty options from DefaultOptions.
func New(opts Options) *Normalizer {
	def := DefaultOptions()
	if opts.PlaceholderImage == "" {
		opts.PlaceholderImage = def.PlaceholderImage
	}
	if opts.PlaceholderDescription == "" {
		opts.PlaceholderDescription = def.PlaceholderDescription
	}
	if opts.AssetBaseURL == "" {
		opts.AssetBaseURL = def.AssetBaseURL
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Normalizer{opts: opts, validate: v}
}

// Normalize validates one record and applies defaults to every optional field.
// Only the identifier and name are required.
func (n *Normalizer) Normalize(r types.PersonRecord) (types.NormalizedPerson, error) {
	id, verr := requiredString(r, types.FieldID, "id")
	if verr != nil {
		return types.NormalizedPerson{}, verr
	}
	name, verr := requiredString(r, types.FieldName, "name")
	if verr != nil {
		verr.RecordID = id
		return types.NormalizedPerson{}, verr
	}

	p := types.NormalizedPerson{
		ID:          id,
		Name:        name,
		Role:        strings.TrimSpace(cast.ToString(r[types.FieldRole])),
		Description: n.description(r[types.FieldDescription]),
		ImageURL:    n.imageURL(r),
		Position:    position(r[types.FieldPosition]),
		IsCandidate: cast.ToBool(r[types.FieldIsCandidate]),
		Relations:   relations(r[types.FieldRelations]),
		Order:       cast.ToInt(r[types.FieldOrder]),
	}

	if err := n.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return types.NormalizedPerson{}, &ValidationError{
				Field:    verrs[0].Field(),
				Message:  "is required",
				Index:    -1,
				RecordID: id,
			}
		}
		return types.NormalizedPerson{}, fmt.Errorf("validate person %q: %w", id, err)
	}

	return p, nil
}

// NormalizeAll normalizes a fetched batch in order. The first invalid record fails
// the whole batch so a map is never rendered with unexplained missing people.
func (n *Normalizer) NormalizeAll(records []types.PersonRecord) ([]types.NormalizedPerson, error) {
	people := make([]types.NormalizedPerson, 0, len(records))
	for i, r := range records {
		p, err := n.Normalize(r)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Index = i
			}
			return nil, err
		}
		people = append(people, p)
	}
	return people, nil
}

func requiredString(r types.PersonRecord, key, field string) (string, *ValidationError) {
	raw, ok := r[key]
	if !ok || raw == nil {
		return "", &ValidationError{Field: field, Message: "is required", Index: -1}
	}
	switch raw.(type) {
	case map[string]any, []any, bool:
		return "", &ValidationError{Field: field, Message: fmt.Sprintf("has unusable type %T", raw), Index: -1}
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return "", &ValidationError{Field: field, Message: fmt.Sprintf("has unusable type %T", raw), Index: -1}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: field, Message: "is required", Index: -1}
	}
	return s, nil
}

// description accepts plain text, HTML, or a portable-text block array.
func (n *Normalizer) description(raw any) string {
	var text string
	switch v := raw.(type) {
	case string:
		plain, err := fetch.PlainText(v)
		if err != nil {
			plain = strings.TrimSpace(v)
		}
		text = plain
	case []any:
		lines := make([]string, 0, len(v))
		for _, block := range v {
			var parts []string
			for _, span := range blockTextPath.Get(block) {
				if s, ok := span.(string); ok {
					parts = append(parts, s)
				}
			}
			if line := strings.TrimSpace(strings.Join(parts, "")); line != "" {
				lines = append(lines, line)
			}
		}
		text = strings.Join(lines, "\n")
	}

	if text == "" {
		return n.opts.PlaceholderDescription
	}
	return text
}

// imageURL resolves the photo field, falling back to image, then to the placeholder.
func (n *Normalizer) imageURL(r types.PersonRecord) string {
	for _, key := range []string{types.FieldPhoto, types.FieldImage} {
		if u := n.resolveImage(r[key]); u != "" {
			return u
		}
	}
	return n.opts.PlaceholderImage
}

func (n *Normalizer) resolveImage(raw any) string {
	switch v := raw.(type) {
	case string:
		return n.resolveRef(strings.TrimSpace(v))
	case map[string]any:
		if asset, ok := v["asset"].(map[string]any); ok {
			if u, ok := asset["url"].(string); ok && strings.TrimSpace(u) != "" {
				return strings.TrimSpace(u)
			}
			if ref, ok := asset["_ref"].(string); ok {
				return n.resolveRef(strings.TrimSpace(ref))
			}
		}
		if u, ok := v["url"].(string); ok {
			return strings.TrimSpace(u)
		}
	}
	return ""
}

// resolveRef passes URLs and site paths through and maps asset references of the form
// image-<hash>-<w>x<h>-<ext> onto the image CDN. Unresolvable references yield "".
func (n *Normalizer) resolveRef(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "/") {
		return ref
	}
	if n.opts.ProjectID == "" || n.opts.Dataset == "" || !strings.HasPrefix(ref, "image-") {
		return ""
	}

	body := strings.TrimPrefix(ref, "image-")
	idx := strings.LastIndex(body, "-")
	if idx <= 0 || idx == len(body)-1 {
		return ""
	}
	file := body[:idx] + "." + body[idx+1:]
	return fmt.Sprintf("%s/%s/%s/%s", strings.TrimRight(n.opts.AssetBaseURL, "/"), n.opts.ProjectID, n.opts.Dataset, file)
}

func position(raw any) types.Position {
	m, ok := raw.(map[string]any)
	if !ok {
		return types.Position{}
	}
	x, errX := cast.ToFloat64E(m["x"])
	y, errY := cast.ToFloat64E(m["y"])
	if errX != nil || !finite(x) {
		x = 0
	}
	if errY != nil || !finite(y) {
		y = 0
	}
	return types.Position{X: x, Y: y}
}

// finite rejects NaN and the infinities, which cannot be encoded as JSON.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// relations keeps the first occurrence of each identifier, in declared order.
func relations(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		if ss, ok := raw.([]string); ok {
			items = make([]any, len(ss))
			for i, s := range ss {
				items[i] = s
			}
		}
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		var id string
		switch v := item.(type) {
		case string:
			id = v
		case map[string]any:
			id, _ = v["_ref"].(string)
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
