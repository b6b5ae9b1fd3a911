package pbapi

// Field types known to the backend.
const (
	FieldTypeText     = "text"
	FieldTypeNumber   = "number"
	FieldTypeBool     = "bool"
	FieldTypeEmail    = "email"
	FieldTypeURL      = "url"
	FieldTypeEditor   = "editor"
	FieldTypeDate     = "date"
	FieldTypeAutodate = "autodate"
	FieldTypeSelect   = "select"
	FieldTypeFile     = "file"
	FieldTypeRelation = "relation"
	FieldTypeJSON     = "json"
	FieldTypePassword = "password"
	FieldTypeGeoPoint = "geoPoint"
)

// Collection describes a named set of records and its schema.
type Collection struct {
	ID     string  `json:"id"     yaml:"id"`
	Name   string  `json:"name"   yaml:"name"`
	Type   string  `json:"type"   yaml:"type"`
	System bool    `json:"system" yaml:"system"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Field describes one attribute of a collection.
//
// Min and Max hold numbers for number fields and date strings for date fields,
// so they are kept as raw values.
type Field struct {
	ID                  string   `json:"id"                            yaml:"id"`
	Name                string   `json:"name"                          yaml:"name"`
	Type                string   `json:"type"                          yaml:"type"`
	System              bool     `json:"system"                        yaml:"system"`
	Required            bool     `json:"required,omitempty"            yaml:"required,omitempty"`
	Hidden              bool     `json:"hidden"                        yaml:"hidden"`
	Presentable         bool     `json:"presentable"                   yaml:"presentable"`
	PrimaryKey          bool     `json:"primaryKey,omitempty"          yaml:"primaryKey,omitempty"`
	MaxSelect           int      `json:"maxSelect,omitempty"           yaml:"maxSelect,omitempty"`
	MinSelect           int      `json:"minSelect,omitempty"           yaml:"minSelect,omitempty"`
	Values              []string `json:"values,omitempty"              yaml:"values,omitempty"`
	CollectionID        string   `json:"collectionId,omitempty"        yaml:"collectionId,omitempty"`
	CascadeDelete       bool     `json:"cascadeDelete,omitempty"       yaml:"cascadeDelete,omitempty"`
	Min                 *Value   `json:"min,omitempty"                 yaml:"-"`
	Max                 *Value   `json:"max,omitempty"                 yaml:"-"`
	Pattern             string   `json:"pattern,omitempty"             yaml:"pattern,omitempty"`
	AutogeneratePattern string   `json:"autogeneratePattern,omitempty" yaml:"autogeneratePattern,omitempty"`
	OnCreate            bool     `json:"onCreate,omitempty"            yaml:"onCreate,omitempty"`
	OnUpdate            bool     `json:"onUpdate,omitempty"            yaml:"onUpdate,omitempty"`
}

// IsRelation reports whether the field references records of another collection.
func (f Field) IsRelation() bool {
	return f.Type == FieldTypeRelation
}

// ListResult represents one page of a list response.
type ListResult[T any] struct {
	Page       int `json:"page"       yaml:"page"`
	PerPage    int `json:"perPage"    yaml:"perPage"`
	TotalItems int `json:"totalItems" yaml:"totalItems"`
	TotalPages int `json:"totalPages" yaml:"totalPages"`
	Items      []T `json:"items"      yaml:"items"`
}

// PageResult is one page of records.
type PageResult = ListResult[*Record]

// CollectionList is one page of collections.
type CollectionList = ListResult[Collection]

// OptionEntry is a label/value pair offered for interactive selection.
type OptionEntry struct {
	Label string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// AuthResponse is the payload returned by auth-with-password.
type AuthResponse struct {
	Token  string  `json:"token"`
	Record *Record `json:"record"`
}
