package observability

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/cqlcell/internal/deserialize"
	"github.com/danmuck/cqlcell/internal/logging"
	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
	"github.com/danmuck/cqlcell/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cell(b []byte) *frame.Slice {
	s := frame.NewSlice(b)
	return &s
}

func TestRecorderCountsOutcomes(t *testing.T) {
	testlog.Start(t)
	reg := prometheus.NewRegistry()
	var logs bytes.Buffer
	rec, err := NewRecorder(reg, "test", logging.New(logging.Config{Level: zerolog.DebugLevel, NoColor: true, Out: &logs}))
	require.NoError(t, err)

	d := deserialize.Observed(deserialize.Int32, rec)
	require.NoError(t, d.TypeCheck(cqltype.Int))
	require.Error(t, d.TypeCheck(cqltype.Text))
	_, err = d.Deserialize(cqltype.Int, cell([]byte{0, 0, 0, 1}))
	require.NoError(t, err)
	_, err = d.Deserialize(cqltype.Int, cell([]byte{0, 1}))
	require.Error(t, err)
	_, err = d.Deserialize(cqltype.Int, nil)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.typeChecks.WithLabelValues("int32", "int", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.typeChecks.WithLabelValues("int32", "text", "mismatched_type")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.cells.WithLabelValues("int32", "int", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.cells.WithLabelValues("int32", "int", "byte_length_mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.cells.WithLabelValues("int32", "int", "expected_non_null")))
	families, err := reg.Gather()
	require.NoError(t, err)
	series := 0
	for _, f := range families {
		series += len(f.GetMetric())
	}
	assert.Equal(t, 5, series)

	assert.Contains(t, logs.String(), "deserialize failed")
	assert.Contains(t, logs.String(), "type check failed")
}

func TestRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg, "", zerolog.Nop())
	require.NoError(t, err)
	_, err = NewRecorder(reg, "", zerolog.Nop())
	assert.Error(t, err)
}

func TestDefaultRecorderIsShared(t *testing.T) {
	a := DefaultRecorder("", zerolog.Nop())
	b := DefaultRecorder("other", zerolog.Nop())
	assert.Same(t, a, b)
}

func TestResultLabels(t *testing.T) {
	_, err := deserialize.Text.Deserialize(cqltype.Ascii, cell([]byte{0xc3, 0xa9}))
	assert.Equal(t, "expected_ascii", Result(err))
	_, err = deserialize.Text.Deserialize(cqltype.Text, cell([]byte{0xff}))
	assert.Equal(t, "invalid_utf8", Result(err))
	_, err = deserialize.Dynamic.Deserialize(cqltype.Int, cell([]byte{1}))
	assert.Equal(t, "generic_parse_error", Result(err))
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "error", Result(errors.New("plain")))
}

func TestRegistryWithRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg, "cqlcell", zerolog.Nop())
	require.NoError(t, err)
	r, err := deserialize.NewRegistry(deserialize.Options{Observer: rec})
	require.NoError(t, err)

	_, err = r.Decode(cqltype.Text, cell([]byte("a")))
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.cells.WithLabelValues("*string", "text", "ok")))
}

func TestInitLoggerSetsApp(t *testing.T) {
	var buf bytes.Buffer
	l := InitLogger("cellctl", logging.Config{Level: zerolog.InfoLevel, NoColor: true, Out: &buf})
	l.Info().Msg("ready")
	assert.Contains(t, buf.String(), "app=cellctl")
}
