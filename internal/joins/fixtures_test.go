package joins

import (
	"github.com/hurou927/db-join-path/internal/schema"
)

func fk(local, refResource, refField string) schema.ForeignKeyRef {
	return schema.ForeignKeyRef{LocalField: local, RefResource: refResource, RefField: refField}
}

func res(name string, fields []string, fks ...schema.ForeignKeyRef) schema.Resource {
	r := schema.Resource{Name: name, ForeignKeys: fks}
	for _, f := range fields {
		r.Fields = append(r.Fields, schema.Field{Name: f})
	}
	return r
}

// categoriesSchema: books.category_id -> categories.id
func categoriesSchema() *schema.Schema {
	return &schema.Schema{Resources: []schema.Resource{
		res("categories", []string{"id", "label"}),
		res("books", []string{"title", "category_id", "publication_year"},
			fk("category_id", "categories", "id")),
	}}
}

// pivotSchema links authors and books through book_authors, and books to
// book_sets through book_set_pivots.
func pivotSchema() *schema.Schema {
	return &schema.Schema{Resources: []schema.Resource{
		res("authors", []string{"id", "name"}),
		res("books", []string{"id", "title"}),
		res("book_authors", []string{"book_id", "author_id"},
			fk("book_id", "books", "id"),
			fk("author_id", "authors", "id")),
		res("book_set_pivots", []string{"book_set_id", "book_id"},
			fk("book_set_id", "book_sets", "id"),
			fk("book_id", "books", "id")),
		res("book_sets", []string{"id", "label"}),
	}}
}

// chainSchema: tableA <- tableB <- tableC, and tableD -> tableB.
func chainSchema() *schema.Schema {
	return &schema.Schema{Resources: []schema.Resource{
		res("tableA", []string{"id"}),
		res("tableB", []string{"id", "tableA_id"}, fk("tableA_id", "tableA", "id")),
		res("tableC", []string{"id", "tableB_id"}, fk("tableB_id", "tableB", "id")),
		res("tableD", []string{"id", "tableB_id"}, fk("tableB_id", "tableB", "id")),
	}}
}

type entry struct {
	Resource string
	On       []string
}

// entries flattens a plan in discovery order for comparison.
func entries(p *Plan) []entry {
	var out []entry
	for _, j := range p.Joins() {
		out = append(out, entry{Resource: j.Resource, On: j.On()})
	}
	return out
}
