package observability

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/danmuck/cqlcell/internal/deserialize"
	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	DefaultNamespace = "cqlcell"
	ResultOK         = "ok"
)

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// Recorder counts type checks and cell decodes by Go type, CQL type and
// outcome, and logs failures at debug level. It implements
// deserialize.Observer.
type Recorder struct {
	typeChecks *prometheus.CounterVec
	cells      *prometheus.CounterVec
	logger     zerolog.Logger
}

var _ deserialize.Observer = (*Recorder)(nil)

// NewRecorder registers the counters on reg under namespace.
func NewRecorder(reg prometheus.Registerer, namespace string, logger zerolog.Logger) (*Recorder, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	labels := []string{"go_type", "cql_type", "result"}
	r := &Recorder{
		typeChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "deserialize",
				Name:      "type_checks_total",
				Help:      "Type checks by Go type, CQL type and result.",
			},
			labels,
		),
		cells: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "deserialize",
				Name:      "cells_total",
				Help:      "Cells deserialized by Go type, CQL type and result.",
			},
			labels,
		),
		logger: logger,
	}
	for _, c := range []prometheus.Collector{r.typeChecks, r.cells} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("observability: register metrics: %w", err)
		}
	}
	return r, nil
}

// DefaultRecorder returns a process-wide recorder on the default prometheus
// registry. The namespace and logger of the first call win.
func DefaultRecorder(namespace string, logger zerolog.Logger) *Recorder {
	defaultOnce.Do(func() {
		r, err := NewRecorder(prometheus.DefaultRegisterer, namespace, logger)
		if err != nil {
			panic(err)
		}
		defaultRecorder = r
	})
	return defaultRecorder
}

func (r *Recorder) ObserveTypeCheck(goType string, typ cqltype.ColumnType, err error) {
	result := Result(err)
	r.typeChecks.WithLabelValues(goType, typ.String(), result).Inc()
	if err != nil {
		r.logger.Debug().Str("go_type", goType).Str("cql_type", typ.String()).Str("result", result).Err(err).Msg("type check failed")
	}
}

func (r *Recorder) ObserveDeserialize(goType string, typ cqltype.ColumnType, err error) {
	result := Result(err)
	r.cells.WithLabelValues(goType, typ.String(), result).Inc()
	if err != nil {
		r.logger.Debug().Str("go_type", goType).Str("cql_type", typ.String()).Str("result", result).Err(err).Msg("deserialize failed")
	}
}

// Result labels err by its kind, e.g. "byte_length_mismatch". Errors that
// carry no known kind are labelled "error".
func Result(err error) string {
	if err == nil {
		return ResultOK
	}
	var de deserialize.DeserializationError
	if errors.As(err, &de) && de.Kind != nil {
		return kindLabel(de.Kind)
	}
	var te deserialize.TypeCheckError
	if errors.As(err, &te) && te.Kind != nil {
		return kindLabel(te.Kind)
	}
	return "error"
}

// kindLabel converts a kind's Go type name to snake case.
func kindLabel(kind error) string {
	name := reflect.TypeOf(kind).Name()
	var b strings.Builder
	for i, c := range name {
		if c >= 'A' && c <= 'Z' {
			if i > 0 && !(name[i-1] >= 'A' && name[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			c += 'a' - 'A'
		}
		b.WriteRune(c)
	}
	return b.String()
}
