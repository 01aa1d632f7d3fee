package errors

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_PreservesChain(t *testing.T) {
	err := Wrap(fs.ErrNotExist, CategoryFileSystem, SeverityFatal, "template directory not found").
		WithContext("dir", "views")

	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, "views", err.Context["dir"])
	assert.Equal(t, "filesystem: template directory not found: file does not exist", err.Error())
}

func TestCategoryThroughFmtWrap(t *testing.T) {
	inner := New(CategoryConfig, SeverityFatal, "bad config")
	outer := fmt.Errorf("loading: %w", inner)

	assert.True(t, IsCategory(outer, CategoryConfig))
	assert.False(t, IsCategory(outer, CategoryRender))
	assert.Equal(t, CategoryConfig, GetCategory(outer))
	assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
}

func TestCLIAdapter_ExitCodes(t *testing.T) {
	a := NewCLIAdapter(false, zerolog.Nop())

	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("plain"), 1},
		{New(CategoryValidation, SeverityFatal, "x"), 2},
		{New(CategoryConfig, SeverityFatal, "x"), 7},
		{New(CategoryTemplate, SeverityFatal, "x"), 11},
		{New(CategoryRender, SeverityError, "x"), 11},
		{New(CategoryInternal, SeverityFatal, "x"), 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, a.ExitCodeFor(tc.err), "%v", tc.err)
	}
}

func TestCLIAdapter_FormatError(t *testing.T) {
	quiet := NewCLIAdapter(false, zerolog.Nop())
	verbose := NewCLIAdapter(true, zerolog.Nop())

	cfgErr := New(CategoryConfig, SeverityFatal, "configuration file not found")
	assert.Equal(t, "configuration file not found", quiet.FormatError(cfgErr))

	buildErr := Wrap(errors.New("boom"), CategoryRender, SeverityError, "render failed")
	assert.Equal(t, "render: render failed", quiet.FormatError(buildErr))
	assert.Equal(t, "render: render failed: boom", verbose.FormatError(buildErr))
	assert.Equal(t, "Error: plain", quiet.FormatError(errors.New("plain")))
}

func TestCLIAdapter_HandleLogsContext(t *testing.T) {
	var logs, out bytes.Buffer
	a := NewCLIAdapter(false, zerolog.New(&logs))
	a.out = &out

	err := New(CategoryTemplate, SeverityFatal, "duplicate output name").
		WithContext("output", "index.html")
	code := a.Handle(err)

	assert.Equal(t, 11, code)
	assert.Contains(t, logs.String(), `"category":"template"`)
	assert.Contains(t, logs.String(), `"output":"index.html"`)
	assert.Contains(t, out.String(), "template: duplicate output name")
}
