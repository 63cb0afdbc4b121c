package apiclient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
)

// --- Query ---

func TestQuery(t *testing.T) {
	t.Parallel()

	t.Run("zero value is usable", func(t *testing.T) {
		t.Parallel()

		var q apiclient.Query
		q.Add("a", 1)
		assert.Equal(t, "a=1", q.Encode())
	})

	t.Run("nil query encodes empty", func(t *testing.T) {
		t.Parallel()

		var q *apiclient.Query
		assert.Empty(t, q.Encode())
		assert.Zero(t, q.Len())
	})

	t.Run("add on a nil query allocates", func(t *testing.T) {
		t.Parallel()

		var q *apiclient.Query
		q.Del("a")
		got := q.Add("a", 1).Set("b", "x")
		assert.NotNil(t, got)
		assert.Equal(t, "a=1&b=x", got.Encode())
		assert.Nil(t, q)
	})

	t.Run("drops nil values and pointers", func(t *testing.T) {
		t.Parallel()

		var p *int
		var s []string
		q := apiclient.NewQuery().Add("a", nil).Add("b", p).Add("c", s)
		assert.Zero(t, q.Len())
		assert.Empty(t, q.Encode())
	})

	t.Run("dereferences pointers", func(t *testing.T) {
		t.Parallel()

		n := 7
		q := apiclient.NewQuery().Add("n", &n).Add("ok", true)
		assert.Equal(t, "n=7&ok=true", q.Encode())
	})

	t.Run("arrays repeat the key", func(t *testing.T) {
		t.Parallel()

		q := apiclient.NewQuery().Add("id", []int{1, 2, 3})
		assert.Equal(t, "id=1&id=2&id=3", q.Encode())
		assert.Equal(t, []string{"1", "2", "3"}, q.Values("id"))
	})

	t.Run("escapes values", func(t *testing.T) {
		t.Parallel()

		q := apiclient.NewQuery().Add("search", "red shoes & socks")
		assert.Equal(t, "search=red+shoes+%26+socks", q.Encode())
	})

	t.Run("set replaces, del removes", func(t *testing.T) {
		t.Parallel()

		q := apiclient.NewQuery().Add("page", 1).Add("limit", 10).Add("page", 2)
		q.Set("page", 5)
		assert.Equal(t, "limit=10&page=5", q.Encode())
		q.Del("limit")
		assert.Equal(t, "page=5", q.Encode())
		assert.Equal(t, "5", q.Get("page"))
	})

	t.Run("clone is independent", func(t *testing.T) {
		t.Parallel()

		q := apiclient.NewQuery().Add("a", 1)
		c := q.Clone()
		c.Add("a", 2)
		assert.Equal(t, "a=1", q.Encode())
		assert.Equal(t, "a=1&a=2", c.Encode())
	})
}

func TestQueryFromMap(t *testing.T) {
	t.Parallel()

	q := apiclient.QueryFromMap(map[string]any{"limit": 10, "page": 1, "status": nil})
	assert.Equal(t, "limit=10&page=1", q.Encode())
}

func TestQueryFromStruct(t *testing.T) {
	t.Parallel()

	type filter struct {
		Page     int     `query:"page"`
		Limit    int     `query:"limit,omitempty"`
		Status   *string `query:"status"`
		Category string  `query:"category,omitempty"`
		Internal string  `query:"-"`
		Untagged string
	}

	published := "published"
	q := apiclient.QueryFromStruct(&filter{Page: 1, Status: &published, Internal: "x", Untagged: "y"})
	assert.Equal(t, "page=1&status=published", q.Encode())

	assert.Zero(t, apiclient.QueryFromStruct((*filter)(nil)).Len())
	assert.Zero(t, apiclient.QueryFromStruct(42).Len())
}
