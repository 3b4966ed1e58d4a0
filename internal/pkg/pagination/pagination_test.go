package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	assert.Equal(t, Params{Page: 1, PageSize: DefaultPageSize}, Parse("", ""))
	assert.Equal(t, Params{Page: 3, PageSize: 20}, Parse("3", "20"))
	assert.Equal(t, Params{Page: 1, PageSize: MaxPageSize}, Parse("-1", "100000"))
	assert.Equal(t, 40, Parse("3", "20").Offset())
}

func TestMeta(t *testing.T) {
	p := Params{Page: 2, PageSize: 10}
	assert.Equal(t, Meta{Total: 21, Page: 2, PageSize: 10, TotalPages: 3}, p.Meta(21))
	assert.Equal(t, 0, p.Meta(0).TotalPages)
}
