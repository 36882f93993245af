package schema

// Field represents a column of a resource.
type Field struct {
	Name     string
	DataType string // as reported by the source, informational only
}

// ForeignKeyRef is a single-column reference from a field of the declaring
// resource to a field of another (or the same) resource.
type ForeignKeyRef struct {
	LocalField  string
	RefResource string
	RefField    string
}

// Resource represents a table with its fields and foreign keys.
type Resource struct {
	Name        string
	Fields      []Field
	ForeignKeys []ForeignKeyRef
}

// Schema is an ordered set of resources with unique names.
type Schema struct {
	Resources []Resource
}

// FieldNames returns all field names in declaration order.
func (r *Resource) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Clone returns a deep copy of the resource.
func (r *Resource) Clone() *Resource {
	c := &Resource{Name: r.Name}
	if r.Fields != nil {
		c.Fields = append([]Field(nil), r.Fields...)
	}
	if r.ForeignKeys != nil {
		c.ForeignKeys = append([]ForeignKeyRef(nil), r.ForeignKeys...)
	}
	return c
}

// Clone returns a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	c := &Schema{}
	if s.Resources != nil {
		c.Resources = make([]Resource, len(s.Resources))
		for i := range s.Resources {
			c.Resources[i] = *s.Resources[i].Clone()
		}
	}
	return c
}

// Resource returns the resource with the given name, or nil.
func (s *Schema) Resource(name string) *Resource {
	for i := range s.Resources {
		if s.Resources[i].Name == name {
			return &s.Resources[i]
		}
	}
	return nil
}
