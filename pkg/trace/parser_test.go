package trace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_CountsFunctionsAndLines(t *testing.T) {
	log := `0x1000
main
src/a.c:10 init
src/a.c:10 init
main
`
	profile, err := Parse(context.Background(), strings.NewReader(log))
	require.NoError(t, err)

	assert.Equal(t, []string{"main"}, profile.Functions.Names())
	assert.Equal(t, 2, profile.Functions.Count("main"))

	assert.Equal(t, []string{"src/a.c"}, profile.Files.Files())
	assert.Equal(t, LineCounts{10: 2}, profile.Files.Lines("src/a.c"))

	assert.Equal(t, Stats{LinesRead: 5, Addresses: 1, SourceRecords: 2, FunctionRecords: 2}, profile.Stats)
}

func TestParse_FirstSeenOrder(t *testing.T) {
	log := "zeta\nalpha\nb.c:1\na.c:2\nzeta\nmid\nb.c:3\n"
	profile, err := Parse(context.Background(), strings.NewReader(log))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, profile.Functions.Names())
	assert.Equal(t, []string{"b.c", "a.c"}, profile.Files.Files())
	assert.Equal(t, LineCounts{1: 1, 3: 1}, profile.Files.Lines("b.c"))
}

func TestParse_TrailingWhitespaceAndCRLF(t *testing.T) {
	log := "main  \r\nmain\r\na.c:4 \t\r\n"
	profile, err := Parse(context.Background(), strings.NewReader(log))
	require.NoError(t, err)

	assert.Equal(t, 2, profile.Functions.Count("main"))
	assert.Equal(t, 1, profile.Files.Count("a.c", 4))
}

func TestParse_EmptyLineIsFunctionRecord(t *testing.T) {
	profile, err := Parse(context.Background(), strings.NewReader("main\n\nmain\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"main", ""}, profile.Functions.Names())
	assert.Equal(t, 1, profile.Functions.Count(""))
}

func TestParse_CountsEveryNonAddressLine(t *testing.T) {
	log := `0x0
f
g
0x4
x.c:1 f
x.c:1 f
y.c:9
f
foo.c:
0x8
`
	profile, err := Parse(context.Background(), strings.NewReader(log))
	require.NoError(t, err)

	nonAddress := profile.Stats.LinesRead - profile.Stats.Addresses
	assert.Equal(t, 7, nonAddress)
	assert.Equal(t, nonAddress, profile.Functions.Total()+profile.Files.Total())
}

func TestParse_Idempotent(t *testing.T) {
	log := "0x10\nmain\na.c:1\nb.c:2\nmain\nhelper\na.c:1\n"

	first, err := Parse(context.Background(), strings.NewReader(log))
	require.NoError(t, err)
	second, err := Parse(context.Background(), strings.NewReader(log))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParse_MalformedAddressAborts(t *testing.T) {
	log := "main\n0x12g4\nmain\n"
	profile, err := Parse(context.Background(), strings.NewReader(log))
	require.Error(t, err)
	assert.Nil(t, profile)
	assert.True(t, errors.Is(err, ErrMalformedAddress))

	var addrErr *MalformedAddressError
	require.True(t, errors.As(err, &addrErr))
	assert.Equal(t, 2, addrErr.LineNum)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParse_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, strings.NewReader("main\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "firmware.pmap")
	require.NoError(t, os.WriteFile(path, []byte("0x0\nmain\nmain.c:3\n"), 0644))

	profile, err := ParseFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, profile.Source)
	assert.Equal(t, 1, profile.Functions.Count("main"))
	assert.Equal(t, 1, profile.Files.Count("main.c", 3))
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.pmap"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFunctionTable(t *testing.T) {
	tbl := NewFunctionTable()
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 0, tbl.Count("missing"))

	tbl.Add("b")
	tbl.Add("a")
	tbl.Add("b")

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 3, tbl.Total())
	assert.Equal(t, []string{"b", "a"}, tbl.Names())

	names := tbl.Names()
	names[0] = "changed"
	assert.Equal(t, "b", tbl.Names()[0], "Names must return a copy")
}

func TestFileTable(t *testing.T) {
	tbl := NewFileTable()
	tbl.Add("x.c", 5)
	tbl.Add("x.c", 5)
	tbl.Add("x.c", 1)
	tbl.Add("w.c", 2)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 4, tbl.Total())
	assert.Equal(t, []string{"x.c", "w.c"}, tbl.Files())
	assert.Equal(t, 2, tbl.Count("x.c", 5))
	assert.Equal(t, 0, tbl.Count("x.c", 6))
	assert.Nil(t, tbl.Lines("nope.c"))
}
