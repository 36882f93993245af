package joins

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hurou927/db-join-path/internal/graph"
	"github.com/hurou927/db-join-path/internal/schema"
)

func TestFindPath_ThroughPivotTable(t *testing.T) {
	v := graph.Build(pivotSchema())

	p, err := FindPath(v, "authors", "books")
	require.NoError(t, err)

	assert.Equal(t, "authors", p.From)
	assert.Equal(t, []entry{
		{Resource: "book_authors", On: []string{"authors.id=book_authors.author_id"}},
		{Resource: "books", On: []string{"books.id=book_authors.book_id"}},
	}, entries(p))
}

func TestFindPath_DirectLinkEitherDirection(t *testing.T) {
	v := graph.Build(categoriesSchema())

	tests := []struct {
		name string
		from string
		to   string
		want []entry
	}{
		{
			name: "referenced to referencing",
			from: "categories",
			to:   "books",
			want: []entry{{Resource: "books", On: []string{"categories.id=books.category_id"}}},
		},
		{
			name: "referencing to referenced",
			from: "books",
			to:   "categories",
			want: []entry{{Resource: "categories", On: []string{"categories.id=books.category_id"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := FindPath(v, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, 1, p.Len())
			assert.Equal(t, tt.want, entries(p))
			assert.False(t, p.Has(tt.from))
		})
	}
}

func TestFindPath_Chain(t *testing.T) {
	v := graph.Build(chainSchema())

	p, err := FindPath(v, "tableA", "tableC")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{Resource: "tableB", On: []string{"tableA.id=tableB.tableA_id"}},
		{Resource: "tableC", On: []string{"tableB.id=tableC.tableB_id"}},
	}, entries(p))
}

func TestFindPath_PrefersFewestJoins(t *testing.T) {
	// a -> b -> c -> d is explored first, a -> x -> d is shorter
	v := graph.Build(&schema.Schema{Resources: []schema.Resource{
		res("a", []string{"id", "b_id", "x_id"}, fk("b_id", "b", "id"), fk("x_id", "x", "id")),
		res("b", []string{"id", "c_id"}, fk("c_id", "c", "id")),
		res("c", []string{"id", "d_id"}, fk("d_id", "d", "id")),
		res("x", []string{"id", "d_id"}, fk("d_id", "d", "id")),
		res("d", []string{"id"}),
	}})

	p, err := FindPath(v, "a", "d")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{Resource: "x", On: []string{"x.id=a.x_id"}},
		{Resource: "d", On: []string{"d.id=x.d_id"}},
	}, entries(p))
}

func TestFindPath_TieKeepsFirstFound(t *testing.T) {
	v := graph.Build(&schema.Schema{Resources: []schema.Resource{
		res("a", []string{"id", "p_id", "q_id"}, fk("p_id", "p", "id"), fk("q_id", "q", "id")),
		res("p", []string{"id", "z_id"}, fk("z_id", "z", "id")),
		res("q", []string{"id", "z_id"}, fk("z_id", "z", "id")),
		res("z", []string{"id"}),
	}})

	p, err := FindPath(v, "a", "z")
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "z"}, p.Resources())
}

func TestFindPath_UsesStartingResourceForeignKeys(t *testing.T) {
	// The starting resource is neither first nor last in the schema, and the
	// last resource holds a different FK to the same target.
	v := graph.Build(&schema.Schema{Resources: []schema.Resource{
		res("categories", []string{"id"}),
		res("books", []string{"id", "category_id"}, fk("category_id", "categories", "id")),
		res("reviews", []string{"id", "subject_id"}, fk("subject_id", "categories", "id")),
	}})

	p, err := FindPath(v, "books", "categories")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{Resource: "categories", On: []string{"categories.id=books.category_id"}},
	}, entries(p))

	// Same, with an unrelated resource last.
	v = graph.Build(&schema.Schema{Resources: []schema.Resource{
		res("categories", []string{"id"}),
		res("books", []string{"id", "category_id"}, fk("category_id", "categories", "id")),
		res("tags", []string{"id"}),
	}})

	p, err = FindPath(v, "books", "categories")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())
}

func TestFindPath_IgnoresSelfReferences(t *testing.T) {
	v := graph.Build(&schema.Schema{Resources: []schema.Resource{
		res("departments", []string{"id"}),
		res("employees", []string{"id", "manager_id", "department_id"},
			fk("manager_id", "employees", "id"),
			fk("department_id", "departments", "id")),
		res("projects", []string{"id", "employee_id"}, fk("employee_id", "employees", "id")),
	}})

	p, err := FindPath(v, "employees", "departments")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{Resource: "departments", On: []string{"departments.id=employees.department_id"}},
	}, entries(p))

	p, err = FindPath(v, "departments", "projects")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{Resource: "employees", On: []string{"departments.id=employees.department_id"}},
		{Resource: "projects", On: []string{"employees.id=projects.employee_id"}},
	}, entries(p))
}

func TestFindPath_UndescribedTargetReachedByForeignKey(t *testing.T) {
	v := graph.Build(&schema.Schema{Resources: []schema.Resource{
		res("orders", []string{"id", "customer_id"}, fk("customer_id", "customers", "id")),
	}})

	p, err := FindPath(v, "orders", "customers")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{Resource: "customers", On: []string{"customers.id=orders.customer_id"}},
	}, entries(p))
}

func TestFindPath_SameResource(t *testing.T) {
	v := graph.Build(categoriesSchema())

	p, err := FindPath(v, "books", "books")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
}

func TestFindPath_NotFound(t *testing.T) {
	s := categoriesSchema()
	s.Resources = append(s.Resources, res("tags", []string{"id", "label"}))
	v := graph.Build(s)

	t.Run("from not described", func(t *testing.T) {
		p, err := FindPath(v, "publishers", "books")
		assert.Nil(t, p)
		assert.True(t, errors.Is(err, ErrUnknownResource))
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "publishers")
	})

	t.Run("no connection", func(t *testing.T) {
		p, err := FindPath(v, "categories", "tags")
		assert.Nil(t, p)
		assert.True(t, errors.Is(err, ErrNoPath))
		assert.False(t, errors.Is(err, ErrUnknownResource))
		assert.True(t, IsNotFound(err))
	})

	t.Run("target neither described nor referenced", func(t *testing.T) {
		_, err := FindPath(v, "categories", "publishers")
		assert.True(t, errors.Is(err, ErrNoPath))
	})
}

func TestFinder_MaxDepth(t *testing.T) {
	v := graph.Build(chainSchema())

	_, err := NewFinder(1, nil).FindPath(v, "tableA", "tableC")
	assert.True(t, errors.Is(err, ErrNoPath))
	assert.Contains(t, err.Error(), "within 1 joins")

	p, err := NewFinder(2, nil).FindPath(v, "tableA", "tableC")
	require.NoError(t, err)
	assert.Equal(t, []string{"tableB", "tableC"}, p.Resources())

	// Direct links are found regardless of the limit.
	p, err = NewFinder(1, nil).FindPath(v, "tableA", "tableB")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())
}

func TestFindPath_DoesNotAlterSchema(t *testing.T) {
	s := pivotSchema()
	before := s.Clone()
	v := graph.Build(s)

	pairs := [][2]string{
		{"authors", "books"},
		{"authors", "book_sets"},
		{"book_sets", "authors"},
		{"books", "nowhere"},
	}
	for _, pair := range pairs {
		_, _ = FindPath(v, pair[0], pair[1])
		assert.Equal(t, before, s)
	}

	// The view keeps its own copy.
	s.Resources[2].ForeignKeys = nil
	p, err := FindPath(v, "authors", "books")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
}

func TestFindPath_Deterministic(t *testing.T) {
	v := graph.Build(pivotSchema())

	first, err := FindPath(v, "authors", "book_sets")
	require.NoError(t, err)
	assert.Equal(t, []string{"book_authors", "books", "book_set_pivots", "book_sets"}, first.Resources())

	for i := 0; i < 10; i++ {
		p, err := FindPath(v, "authors", "book_sets")
		require.NoError(t, err)
		assert.Equal(t, entries(first), entries(p))
	}
}

func TestFindPath_ConcurrentCallers(t *testing.T) {
	v := graph.Build(pivotSchema())
	want, err := FindPath(v, "authors", "book_sets")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Plan, 16)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = FindPath(v, "authors", "book_sets")
		}()
	}
	wg.Wait()

	for _, p := range results {
		require.NotNil(t, p)
		assert.Equal(t, entries(want), entries(p))
	}
}

func TestFinder_LogsResult(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := NewFinder(0, zap.New(core))

	_, err := f.FindPath(graph.Build(pivotSchema()), "authors", "books")
	require.NoError(t, err)

	found := logs.FilterMessage("join path found").All()
	require.Len(t, found, 1)
	assert.Equal(t, "books", found[0].ContextMap()["to"])
	assert.NotZero(t, logs.FilterMessage("exploring join").Len())
}
