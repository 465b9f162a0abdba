// Package contenttypes describes the registry entries that constrain a
// ContentItem's properties.
package contenttypes

// PropertyKind is the JSON kind a property value must have.
type PropertyKind string

const (
	KindString  PropertyKind = "string"
	KindNumber  PropertyKind = "number"
	KindBoolean PropertyKind = "boolean"
	KindObject  PropertyKind = "object"
	KindArray   PropertyKind = "array"
	KindAny     PropertyKind = "any"
)

// PropertySchema constrains one property. Rules uses validator tag syntax,
// e.g. "min=1,max=200" or "url".
type PropertySchema struct {
	Name     string       `json:"name" yaml:"name"`
	Kind     PropertyKind `json:"kind" yaml:"kind"`
	Required bool         `json:"required,omitempty" yaml:"required"`
	Rules    string       `json:"rules,omitempty" yaml:"rules"`
}

// ContentType is one registry entry.
type ContentType struct {
	Type       string           `json:"type" yaml:"type"`
	Name       string           `json:"name" yaml:"name"`
	Properties []PropertySchema `json:"properties" yaml:"properties"`
	// Open types accept properties not listed in Properties.
	Open bool `json:"open,omitempty" yaml:"open"`
}

// Property returns the schema named name.
func (ct *ContentType) Property(name string) (PropertySchema, bool) {
	for _, p := range ct.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertySchema{}, false
}

// Matches reports whether value has the JSON kind k. Numbers decoded from JSON
// arrive as float64; ints are accepted for values built in Go.
func (k PropertyKind) Matches(value any) bool {
	switch k {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindNumber:
		switch value.(type) {
		case float64, float32, int, int64, int32:
			return true
		}
		return false
	case KindBoolean:
		_, ok := value.(bool)
		return ok
	case KindObject:
		_, ok := value.(map[string]any)
		return ok
	case KindArray:
		_, ok := value.([]any)
		return ok
	case KindAny, "":
		return true
	}
	return false
}

// Valid reports whether k is a known kind.
func (k PropertyKind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindObject, KindArray, KindAny:
		return true
	}
	return false
}

// Defaults are the built-in types used when no registry file is present.
func Defaults() []ContentType {
	return []ContentType{
		{
			Type: "richText",
			Name: "Rich Text",
			Properties: []PropertySchema{
				{Name: "html", Kind: KindString, Rules: "max=100000"},
			},
		},
		{
			Type: "image",
			Name: "Image",
			Properties: []PropertySchema{
				{Name: "src", Kind: KindString, Required: true, Rules: "url"},
				{Name: "alt", Kind: KindString, Rules: "max=300"},
				{Name: "width", Kind: KindNumber, Rules: "gte=1"},
				{Name: "height", Kind: KindNumber, Rules: "gte=1"},
			},
		},
		{
			Type: "heading",
			Name: "Heading",
			Properties: []PropertySchema{
				{Name: "text", Kind: KindString, Required: true, Rules: "min=1,max=200"},
				{Name: "level", Kind: KindNumber, Rules: "gte=1,lte=6"},
			},
		},
	}
}
