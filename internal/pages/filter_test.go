package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcludeNames(t *testing.T) {
	f := ExcludeNames("readme", "Changelog")

	assert.False(t, f("readme.md"))
	assert.False(t, f("README.MD"))
	assert.False(t, f("README"))
	assert.False(t, f("changelog.html"))
	assert.True(t, f("readme-first.html"))
	assert.True(t, f("home.njk"))
}

func TestRequireExt(t *testing.T) {
	f := RequireExt("njk", ".md")

	assert.True(t, f("index.njk"))
	assert.True(t, f("post.MD"))
	assert.False(t, f("notes.txt"))
	assert.False(t, f("Makefile"))
}

func TestExcludeGlob(t *testing.T) {
	f := ExcludeGlob("_*", "*.{bak,swp}", "[")

	assert.False(t, f("_partial.html"))
	assert.False(t, f("index.html.swp"))
	assert.True(t, f("index.html"))
}

func TestAll(t *testing.T) {
	f := All(RequireExt("html"), nil, ExcludeNames("404"))

	assert.True(t, f("index.html"))
	assert.False(t, f("404.html"))
	assert.False(t, f("index.md"))
	assert.True(t, All()("anything"))
}
