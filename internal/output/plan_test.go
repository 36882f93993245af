package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hurou927/db-join-path/internal/graph"
	"github.com/hurou927/db-join-path/internal/joins"
	"github.com/hurou927/db-join-path/internal/schema"
)

func chainPlan(t *testing.T) *joins.Plan {
	t.Helper()
	v := graph.Build(&schema.Schema{Resources: []schema.Resource{
		{Name: "authors"},
		{Name: "book_authors", ForeignKeys: []schema.ForeignKeyRef{
			{LocalField: "book_id", RefResource: "books", RefField: "id"},
			{LocalField: "author_id", RefResource: "authors", RefField: "id"},
		}},
		{Name: "books"},
	}})
	p, err := joins.FindPath(v, "authors", "books")
	require.NoError(t, err)
	return p
}

func render(t *testing.T, format string, p *joins.Plan) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, format)
	require.NoError(t, err)
	require.NoError(t, w.WritePlan(p))
	return buf.String()
}

func TestWritePlan_Text(t *testing.T) {
	out := render(t, FormatText, chainPlan(t))
	assert.Equal(t, "from authors (2 joins)\n"+
		"  1. book_authors on authors.id=book_authors.author_id\n"+
		"  2. books on books.id=book_authors.book_id\n", out)
}

func TestWritePlan_SQL(t *testing.T) {
	out := render(t, FormatSQL, chainPlan(t))
	assert.Equal(t, "FROM authors\n"+
		"JOIN book_authors ON authors.id=book_authors.author_id\n"+
		"JOIN books ON books.id=book_authors.book_id\n", out)
}

func TestWritePlan_JSON(t *testing.T) {
	out := render(t, FormatJSON, chainPlan(t))

	var got jsonPlan
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, jsonPlan{From: "authors", Joins: []jsonJoin{
		{Resource: "book_authors", On: []string{"authors.id=book_authors.author_id"}},
		{Resource: "books", On: []string{"books.id=book_authors.book_id"}},
	}}, got)
}

func TestWritePlan_YAMLKeepsOrder(t *testing.T) {
	out := render(t, FormatYAML, chainPlan(t))

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	root := doc.Content[0]
	require.Len(t, root.Content, 4)
	assert.Equal(t, "authors", root.Content[1].Value)

	joinsNode := root.Content[3]
	require.Len(t, joinsNode.Content, 4)
	assert.Equal(t, "book_authors", joinsNode.Content[0].Value)
	assert.Equal(t, "books", joinsNode.Content[2].Value)

	var decoded struct {
		Joins map[string]struct {
			On []string `yaml:"on"`
		} `yaml:"joins"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, []string{"books.id=book_authors.book_id"}, decoded.Joins["books"].On)
}

func TestWriteField(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, FormatText)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("category_id"))
	assert.Equal(t, "category_id\n", buf.String())

	buf.Reset()
	w, err = NewWriter(&buf, FormatJSON)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("category_id"))
	assert.JSONEq(t, `{"field": "category_id"}`, buf.String())
}

func TestNewWriter_UnknownFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, "csv")
	assert.Error(t, err)
}
