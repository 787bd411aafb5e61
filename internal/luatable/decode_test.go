package luatable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const missionSnippet = `-- mission file header
mission =
{
    ["date"] =
    {
        ["Day"] = 1,
        ["Year"] = 2011,
        ["Month"] = 6,
    }, -- end of ["date"]
    ["theatre"] = "Caucasus",
    ["start_time"] = 43200,
    ["sortie"] = "DictKey_sortie_5",
    ["coalition"] =
    {
        ["blue"] =
        {
            ["bullseye"] =
            {
                ["y"] = 617414,
                ["x"] = -291014,
            }, -- end of ["bullseye"]
        },
    },
    ["usedModules"] =
    {
        ["A-10C II"] = true,
        ["F-16C"] = false,
    },
    ["forcedOptions"] = {},
} -- end of mission
`

func TestDecode_MissionSnippet(t *testing.T) {
	tbl, err := Decode(missionSnippet)
	require.NoError(t, err)

	theatre, ok := tbl.String("theatre")
	require.True(t, ok)
	assert.Equal(t, "Caucasus", theatre)

	start, ok := tbl.Int("start_time")
	require.True(t, ok)
	assert.Equal(t, 43200, start)

	x, ok := tbl.Path("coalition", "blue", "bullseye", "x")
	require.True(t, ok)
	assert.Equal(t, -291014.0, x)

	modules, ok := tbl.Table("usedModules")
	require.True(t, ok)
	a10, _ := modules.Bool("A-10C II")
	f16, _ := modules.Bool("F-16C")
	assert.True(t, a10)
	assert.False(t, f16)

	empty, ok := tbl.Table("forcedOptions")
	require.True(t, ok)
	assert.Equal(t, 0, empty.Len())

	assert.Equal(t, []any{"date", "theatre", "start_time", "sortie", "coalition", "usedModules", "forcedOptions"}, tbl.Keys())
}

func TestDecode_KeyForms(t *testing.T) {
	tbl, err := Decode(`{ name = "bare", ["quoted"] = 'single', [3] = 3.5, [true] = "yes", [-1] = 0x1F }`)
	require.NoError(t, err)

	v, _ := tbl.String("name")
	assert.Equal(t, "bare", v)
	v, _ = tbl.String("quoted")
	assert.Equal(t, "single", v)
	n, _ := tbl.Number(3)
	assert.Equal(t, 3.5, n)
	v, _ = tbl.String(true)
	assert.Equal(t, "yes", v)
	n, _ = tbl.Number(-1)
	assert.Equal(t, 31.0, n)
}

func TestDecode_ArrayItemsAndMixedTables(t *testing.T) {
	v, err := DecodeValue(`{ "a", "b"; "c", }`)
	require.NoError(t, err)
	arr := v.(*Table)
	assert.True(t, arr.IsArray())
	assert.Equal(t, []any{"a", "b", "c"}, arr.SortedValues())

	mixed, err := Decode(`{ "first", x = 1, "second" }`)
	require.NoError(t, err)
	assert.False(t, mixed.IsArray())
	first, _ := mixed.String(1)
	second, _ := mixed.String(2)
	assert.Equal(t, "first", first)
	assert.Equal(t, "second", second)
}

func TestDecode_Numbers(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0", 0},
		{"-12", -12},
		{"3.25", 3.25},
		{"1e3", 1000},
		{"2.5E-2", 0.025},
		{".5", 0.5},
		{"0xff", 255},
		{"-0x10", -16},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tbl, err := Decode(`{ ["v"] = ` + tt.in + ` }`)
			require.NoError(t, err)
			got, ok := tbl.Number("v")
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestDecode_StringEscapes(t *testing.T) {
	tbl, err := Decode(`{ ["s"] = "line1\nline2\t\"q\" \\ \65\066 \x41 it\'s", ["long"] = [[
raw "text" \n]], ["cont"] = "a\
b" }`)
	require.NoError(t, err)

	s, _ := tbl.String("s")
	assert.Equal(t, "line1\nline2\t\"q\" \\ AB A it's", s)
	long, _ := tbl.String("long")
	assert.Equal(t, `raw "text" \n`, long)
	cont, _ := tbl.String("cont")
	assert.Equal(t, "a\nb", cont)
}

func TestDecode_CommentsAndNil(t *testing.T) {
	tbl, err := Decode(`{
		--[[ block
		comment ]]
		["a"] = nil, -- trailing
		["b"] = false,
	}`)
	require.NoError(t, err)

	v, ok := tbl.Get("a")
	assert.True(t, ok)
	assert.Nil(t, v)
	b, ok := tbl.Bool("b")
	assert.True(t, ok)
	assert.False(t, b)
}

func TestDecode_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
	}{
		{"missing value", "{\n[\"a\"] = ,\n}", 2},
		{"missing bracket", `{ ["a" = 1 }`, 1},
		{"bare identifier value", `{ ["a"] = foo }`, 1},
		{"unterminated string", "{ [\"a\"] = \"abc\n }", 1},
		{"missing separator", "{\n[\"a\"] = 1\n[\"b\"] = 2 }", 3},
		{"bad number", `{ ["a"] = 12abc }`, 1},
		{"table key", `{ [{}] = 1 }`, 1},
		{"no table", `just prose`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDecode), "expected ErrDecode, got %v", err)

			var decErr *DecodeError
			require.True(t, errors.As(err, &decErr))
			assert.Equal(t, tt.line, decErr.Line)
			assert.Contains(t, err.Error(), "line")
		})
	}
}

func TestDecode_TopLevelNotMap(t *testing.T) {
	_, err := Decode(`mission = { "a", "b" }`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrType))
	assert.False(t, errors.Is(err, ErrDecode))
}

func TestTable_SortedKeys(t *testing.T) {
	tbl, err := Decode(`{ [3] = "c", ["z"] = 1, [1] = "a", ["b"] = 2, [2] = "b" }`)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0, 3.0, "b", "z"}, tbl.SortedKeys())
}

func TestTable_SetKeepsPosition(t *testing.T) {
	tbl := NewTable()
	tbl.Set("a", 1.0)
	tbl.Set(2, "two")
	tbl.Set("a", 3.0)

	assert.Equal(t, []any{"a", 2.0}, tbl.Keys())
	v, _ := tbl.Number("a")
	assert.Equal(t, 3.0, v)
	s, ok := tbl.String(2.0)
	assert.True(t, ok)
	assert.Equal(t, "two", s)
}

func TestTable_NilSafe(t *testing.T) {
	var tbl *Table
	_, ok := tbl.Get("x")
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())
	assert.Empty(t, tbl.Keys())
}
