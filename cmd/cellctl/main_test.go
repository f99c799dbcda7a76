package main

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/cqlcell/internal/protocol/cqlvalue"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
	"github.com/danmuck/cqlcell/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/inf.v0"
	"gopkg.in/yaml.v3"
)

const rowTypes = "id:int; name:text; tags:list<text>, n:bigint"

func mustEncode(t *testing.T, v cqlvalue.Value) []byte {
	t.Helper()
	b, err := cqlvalue.Encode(v)
	require.NoError(t, err)
	return b
}

// rowsBody builds two rows for rowTypes. The second row carries an empty
// int, an empty text and a NULL list.
func rowsBody(t *testing.T) []byte {
	t.Helper()
	var body []byte
	body = frame.AppendCell(body, mustEncode(t, cqlvalue.Int(1)))
	body = frame.AppendCell(body, []byte("alice"))
	body = frame.AppendCell(body, mustEncode(t, cqlvalue.List{cqlvalue.Text("a"), cqlvalue.Text("b")}))
	body = frame.AppendNull(body)

	body = frame.AppendCell(body, nil)
	body = frame.AppendCell(body, nil)
	body = frame.AppendNull(body)
	body = frame.AppendCell(body, mustEncode(t, cqlvalue.BigInt(7)))
	return body
}

func writeInput(t *testing.T, b []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cells.bin")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func run(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDecodeYAML(t *testing.T) {
	testlog.Start(t)
	out, err := run(t, nil, "decode", "--types", rowTypes, writeInput(t, rowsBody(t)))
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0]["id"])
	assert.Equal(t, "alice", rows[0]["name"])
	assert.Equal(t, []any{"a", "b"}, rows[0]["tags"])
	assert.Nil(t, rows[0]["n"])

	assert.Equal(t, emptyMarker, rows[1]["id"])
	assert.Equal(t, "", rows[1]["name"])
	assert.Nil(t, rows[1]["tags"])
	assert.Equal(t, 7, rows[1]["n"])
}

func TestDecodeStdinText(t *testing.T) {
	testlog.Start(t)
	out, err := run(t, bytes.NewReader(rowsBody(t)), "decode", "-t", rowTypes, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "row 0: id=1 name=alice tags=[a b] n=null")
	assert.Contains(t, out, "row 1: id=<empty> name= tags=null n=7")
}

func TestDecodeCompressedFrame(t *testing.T) {
	testlog.Start(t)
	compressed, err := frame.CompressBody(frame.CompressionSnappy, rowsBody(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, frame.WriteFrame(&buf, frame.Frame{
		Header: frame.Header{
			Version: frame.VersionResponseV4,
			Flags:   frame.FlagCompression,
			Stream:  3,
			Opcode:  frame.OpcodeResult,
		},
		Body: compressed,
	}, frame.DefaultLimits()))

	path := writeInput(t, buf.Bytes())
	out, err := run(t, nil, "decode", "--frame", "--compression", "snappy", "-t", rowTypes, "-o", "text", path)
	require.NoError(t, err)
	assert.Contains(t, out, "row 0: id=1")

	_, err = run(t, nil, "decode", "--frame", "-t", rowTypes, path)
	assert.ErrorIs(t, err, frame.ErrNoCompression)
}

func TestDecodeReportsRowAndColumn(t *testing.T) {
	testlog.Start(t)
	var body []byte
	body = frame.AppendCell(body, mustEncode(t, cqlvalue.Int(1)))
	body = frame.AppendCell(body, []byte{0xff})

	_, err := run(t, nil, "decode", "-t", "id:int, name:text", writeInput(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0 column name")

	_, err = run(t, nil, "decode", "-t", "id:int, name:text", writeInput(t, body[:8]))
	require.Error(t, err)
	assert.ErrorIs(t, err, frame.ErrTruncated)
}

func TestDecodeMetrics(t *testing.T) {
	testlog.Start(t)
	out, err := run(t, nil, "decode", "--metrics", "-t", rowTypes, writeInput(t, rowsBody(t)))
	require.NoError(t, err)
	assert.Contains(t, out, "cqlcell_deserialize_cells_total")
	assert.Contains(t, out, "cqlcell_deserialize_type_checks_total")
}

func TestDecodeConfigEnabledMetricsUseDefaultRegistry(t *testing.T) {
	testlog.Start(t)
	cfgPath := filepath.Join(t.TempDir(), "cellctl.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[metrics]\nenabled = true\nnamespace = \"cellctl_cfg\"\n"), 0o644))

	out, err := run(t, nil, "--config", cfgPath, "decode", "-t", rowTypes, writeInput(t, rowsBody(t)))
	require.NoError(t, err)
	assert.NotContains(t, out, "cellctl_cfg_deserialize_cells_total")

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	var cells float64
	for _, mf := range families {
		if mf.GetName() != "cellctl_cfg_deserialize_cells_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			cells += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 8.0, cells)
}

func TestDecodeUsesConfigBindings(t *testing.T) {
	testlog.Start(t)
	cfgPath := filepath.Join(t.TempDir(), "cellctl.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[bindings]\nblob = \"shared\"\n[frame]\nmax_cell_bytes = 2\n"), 0o644))

	body := frame.AppendCell(nil, []byte{0xca, 0xfe})
	out, err := run(t, nil, "--config", cfgPath, "decode", "-t", "b:blob", "-o", "text", writeInput(t, body))
	require.NoError(t, err)
	assert.Contains(t, out, "b=0xcafe")

	body = frame.AppendCell(nil, []byte{1, 2, 3})
	_, err = run(t, nil, "--config", cfgPath, "decode", "-t", "b:blob", writeInput(t, body))
	assert.ErrorIs(t, err, frame.ErrCellTooLarge)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	testlog.Start(t)
	path := writeInput(t, nil)
	_, err := run(t, nil, "decode", "-t", "list<", path)
	assert.Error(t, err)
	_, err = run(t, nil, "decode", "-t", "int", "-o", "json", path)
	assert.Error(t, err)
	_, err = run(t, nil, "decode", "-t", " ; ", path)
	assert.Error(t, err)
	_, err = run(t, nil, "decode", path)
	assert.Error(t, err)
}

func TestDecodeDecimalExtremeScale(t *testing.T) {
	testlog.Start(t)
	body := frame.AppendCell(nil, []byte{0x80, 0, 0, 0, 0x01})
	out, err := run(t, nil, "decode", "-t", "d:decimal", "-o", "text", writeInput(t, body))
	require.NoError(t, err)
	assert.Equal(t, "row 0: d=1E+2147483648\n", out)

	assert.Equal(t, "1E-2147483647", render(inf.NewDec(1, inf.Scale(math.MaxInt32))))
	assert.Equal(t, "1.23", render(inf.NewDec(123, 2)))
}

func TestParseColumns(t *testing.T) {
	cols, err := parseColumns("a:map<int, text>, b: tuple<int,int>; 'org.example.Geo'")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "a", cols[0].name)
	assert.Equal(t, "map<int, text>", cols[0].typ.String())
	assert.Equal(t, "b", cols[1].name)
	assert.Equal(t, "c2", cols[2].name)
}

func TestConfigAndTypesCommands(t *testing.T) {
	testlog.Start(t)
	out, err := run(t, nil, "config", "default")
	require.NoError(t, err)
	assert.Contains(t, out, "[bindings]")

	path := writeInput(t, []byte(out))
	out, err = run(t, nil, "config", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	out, err = run(t, nil, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "varint")
	assert.Contains(t, out, "cqlvalue.Varint")
	assert.Contains(t, out, "duration")
}
