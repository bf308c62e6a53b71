package graphfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	testCases := []struct {
		path   string
		want   Format
		wantOK bool
	}{
		{path: "graph.hcl", want: FormatHCL, wantOK: true},
		{path: "dir/graph.YAML", want: FormatYAML, wantOK: true},
		{path: "graph.yml", want: FormatYAML, wantOK: true},
		{path: "graph.json", wantOK: false},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got, ok := FormatOf(tc.path)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFindGraphFiles(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	for _, name := range []string{"a.hcl", "b.yaml", "notes.txt", filepath.Join("nested", "c.hcl")} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	files, err := FindGraphFiles([]string{dir, filepath.Join(dir, "a.hcl"), filepath.Join(dir, "missing")}, FormatHCL.Extensions()...)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.hcl"), filepath.Join(nested, "c.hcl")}, files)
}

func TestMerge(t *testing.T) {
	dst, src := graphdef.New(), graphdef.New()
	require.NoError(t, dst.AddNode(&graphdef.Node{Name: "a", Op: "NoOp"}))
	require.NoError(t, src.AddNode(&graphdef.Node{Name: "b", Op: "NoOp"}))
	require.NoError(t, src.Library.Add(&graphdef.FunctionDef{Signature: graphdef.Signature{Name: "F"}}))

	require.NoError(t, Merge(dst, src))
	assert.Equal(t, 2, dst.Len())
	assert.True(t, dst.Library.Contains("F"))

	assert.ErrorContains(t, Merge(dst, src), "already exists")
}
