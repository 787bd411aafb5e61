package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/optics-dcs/miz-import/internal/archive"
	"github.com/optics-dcs/miz-import/internal/config"
	"github.com/optics-dcs/miz-import/internal/parser"
	"github.com/optics-dcs/miz-import/internal/tree"
	"github.com/optics-dcs/miz-import/pkg/core"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMission = `mission =
{
    ["theatre"] = "Caucasus",
    ["start_time"] = 43200,
    ["sortie"] = "DictKey_sortie_1",
    ["coalition"] =
    {
        ["blue"] =
        {
            ["bullseye"] = { ["y"] = 617414, ["x"] = -291014 },
            ["country"] =
            {
                [1] =
                {
                    ["name"] = "USA",
                    ["plane"] =
                    {
                        ["group"] =
                        {
                            [1] =
                            {
                                ["name"] = "Hog Flight",
                                ["groupId"] = 1,
                                ["frequency"] = 251,
                                ["task"] = "CAS",
                                ["route"] =
                                {
                                    ["points"] =
                                    {
                                        [1] = { ["alt"] = 18, ["type"] = "TakeOffParking", ["action"] = "From Parking Area", ["ETA"] = 0, ["x"] = 0, ["y"] = 0 },
                                        [2] = { ["alt"] = 2000, ["type"] = "Turning Point", ["action"] = "Turning Point", ["ETA"] = 600, ["x"] = -1000, ["y"] = 5000 },
                                    },
                                },
                                ["units"] =
                                {
                                    [1] =
                                    {
                                        ["type"] = "A-10C_2",
                                        ["unitId"] = 11,
                                        ["skill"] = "Client",
                                        ["name"] = "Hog-1",
                                        ["onboard_num"] = "010",
                                        ["callsign"] = { [1] = 1, [2] = 1, [3] = 1, ["name"] = "Enfield11" },
                                    },
                                },
                            },
                            [2] =
                            {
                                ["name"] = "Tanker",
                                ["groupId"] = 2,
                                ["task"] = "Refueling",
                                ["units"] =
                                {
                                    [1] = { ["type"] = "KC-135", ["unitId"] = 21, ["skill"] = "High", ["name"] = "Texaco-1" },
                                },
                            },
                        },
                    },
                },
            },
        },
        ["red"] =
        {
            ["bullseye"] = { ["y"] = 900000, ["x"] = 11557 },
        },
    },
} -- end of mission
`

const testDictionary = `dictionary =
{
    ["DictKey_sortie_1"] = "Hog Heaven",
} -- end of dictionary
`

func writeMiz(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hog.miz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, body := range map[string]string{archive.MissionEntry: testMission, archive.DictionaryEntry: testDictionary} {
		ew, err := w.Create(name)
		require.NoError(t, err)
		_, err = ew.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestParseCompression(t *testing.T) {
	for in, want := range map[string]string{
		"":     CompressNone,
		"none": CompressNone,
		"GZIP": CompressGzip,
		"gz":   CompressGzip,
		"zstd": CompressZstd,
		"zst":  CompressZstd,
	} {
		got, err := parseCompression(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseCompression("lz4")
	assert.Error(t, err)
}

func TestWriteCompressed(t *testing.T) {
	payload := []byte(`{"id":"root","type":"root"}`)

	var plain bytes.Buffer
	require.NoError(t, writeCompressed(&plain, payload, CompressNone))
	assert.Equal(t, payload, plain.Bytes())

	var gz bytes.Buffer
	require.NoError(t, writeCompressed(&gz, payload, CompressGzip))
	gr, err := gzip.NewReader(&gz)
	require.NoError(t, err)
	got, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	var zs bytes.Buffer
	require.NoError(t, writeCompressed(&zs, payload, CompressZstd))
	zr, err := zstd.NewReader(&zs)
	require.NoError(t, err)
	defer zr.Close()
	got, err = io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	assert.Error(t, writeCompressed(io.Discard, payload, "lz4"))
}

func TestWriteOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tree.json")
	require.NoError(t, writeOutput(io.Discard, path, []byte("{}"), CompressNone))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	var stdout bytes.Buffer
	require.NoError(t, writeOutput(&stdout, "-", []byte("{}"), CompressNone))
	assert.Equal(t, "{}", stdout.String())
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"flight1", "unit11", "waypoint101"},
		splitIDs([]string{"flight1, unit11", "", " waypoint101 ,"}))
	assert.Nil(t, splitIDs(nil))
}

func TestParseMappings(t *testing.T) {
	got, err := parseMappings([]string{"A-10C II=A-10C_2", " Steerpoint = Turning Point "})
	require.NoError(t, err)
	assert.Equal(t, []mapping{
		{Name: "A-10C II", Value: "A-10C_2"},
		{Name: "Steerpoint", Value: "Turning Point"},
	}, got)

	for _, bad := range []string{"A-10C II", "=A-10C_2", "A-10C II="} {
		_, err := parseMappings([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParsePackageID(t *testing.T) {
	id, err := parsePackageID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "x"} {
		_, err := parsePackageID(bad)
		assert.Error(t, err, bad)
	}
}

func TestBuildTree(t *testing.T) {
	path := writeMiz(t)
	p := parser.NewParser(nil)

	root, err := buildTree(context.Background(), p, path, false)
	require.NoError(t, err)
	assert.Equal(t, tree.SchemeArchive, root.Scheme())
	assert.NotNil(t, tree.Find(root, "flight1"))
	assert.NotNil(t, tree.Find(root, "flight2"))

	live, err := buildTree(context.Background(), p, path, true)
	require.NoError(t, err)
	assert.Equal(t, tree.SchemeLive, live.Scheme())
	assert.NotNil(t, tree.Find(live, "Hog Flight"))
	assert.Nil(t, tree.Find(live, "Tanker"))
}

// run executes one command line against a fresh root command and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands_StageAndCommit(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logsDir": "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `",
		"storage": { "type": "sqlite", "sqlitePath": "` + filepath.ToSlash(filepath.Join(dir, "plan.db")) + `" },
		"session": { "type": "database", "ttl": "1h" }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0644))
	miz := writeMiz(t)
	base := []string{"--config", dir}

	out, err := run(t, append(base, "package", "create", "Strike")...)
	require.NoError(t, err)
	assert.Equal(t, "1", strings.TrimSpace(out))

	_, err = run(t, append(base, "seed-airframes", "A-10C II=A-10C_2", "--stations", "1")...)
	require.NoError(t, err)
	_, err = run(t, append(base, "seed-waypoint-types", "Steerpoint=Turning Point")...)
	require.NoError(t, err)

	out, err = run(t, append(base, "stage", miz, "--package", "1")...)
	require.NoError(t, err)
	sessionID := strings.TrimSpace(out)
	require.NotEmpty(t, sessionID)

	out, err = run(t, append(base, "commit", sessionID, "--select", "flight1", "--discard")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"flight1 - CAS" added to package 1`)

	out, err = run(t, append(base, "package", "show", "1")...)
	require.NoError(t, err)
	var plan core.PackagePlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, "Strike", plan.Name)
	require.Len(t, plan.Flights, 1)
	fl := plan.Flights[0]
	assert.Equal(t, "251", fl.RadioFrequency)
	require.Len(t, fl.Aircraft, 1)
	assert.Equal(t, "A-10C II", fl.Aircraft[0].Airframe)
	assert.Equal(t, "010", fl.Aircraft[0].Tailcode)
	require.Len(t, fl.Waypoints, 2)
	assert.Equal(t, "Steerpoint", fl.Waypoints[1].Type)
	assert.Equal(t, "12:10:00", fl.Waypoints[1].TOT)

	// the session was discarded
	_, err = run(t, append(base, "commit", sessionID, "--select", "flight1")...)
	assert.Error(t, err)

	// the tanker has no mapped airframe
	out, err = run(t, append(base, "import", miz, "--package", "1", "--select", "unit21")...)
	assert.Error(t, err)
	assert.Contains(t, out, "failed unit21")

	backup := filepath.Join(dir, "backup.db")
	_, err = run(t, append(base, "backup", backup)...)
	require.NoError(t, err)
	_, err = os.Stat(backup)
	assert.NoError(t, err)
}
