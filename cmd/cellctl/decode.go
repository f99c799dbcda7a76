package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/cqlcell/internal/deserialize"
	"github.com/danmuck/cqlcell/internal/observability"
	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

var errBodyTooLarge = errors.New("cellctl: input larger than frame.max_body_bytes")

type column struct {
	name string
	typ  cqltype.ColumnType
}

type decodeFlags struct {
	types       string
	framed      bool
	compression string
	format      string
	metrics     bool
}

func newDecodeCmd(a *app) *cobra.Command {
	var f decodeFlags
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode rows of cells against column types",
		Long: `Decode reads a body of [int]-length-prefixed cells, one per column and
row after row, and prints the decoded values. With --frame the input starts
with a CQL v4 frame header. Reads stdin when no file or "-" is given.

Columns are separated by ";" or by top-level ",". Each is a CQL type,
optionally prefixed with "name:".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return a.decode(cmd, f, path)
		},
	}
	cmd.Flags().StringVarP(&f.types, "types", "t", "", "column types, e.g. \"id:int; tags:list<text>\"")
	cmd.Flags().BoolVar(&f.framed, "frame", false, "input is a full frame with header")
	cmd.Flags().StringVar(&f.compression, "compression", "", "frame body compression (overrides config)")
	cmd.Flags().StringVarP(&f.format, "format", "o", "yaml", "output format: yaml|text")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "print decode metrics after the rows")
	_ = cmd.MarkFlagRequired("types")
	return cmd
}

func (a *app) decode(cmd *cobra.Command, f decodeFlags, path string) error {
	cols, err := parseColumns(f.types)
	if err != nil {
		return err
	}
	if f.format != "yaml" && f.format != "text" {
		return fmt.Errorf("unknown format %q", f.format)
	}

	compression := a.cfg.Frame.Compression
	if f.compression != "" {
		compression = f.compression
	}
	alg, err := frame.ParseCompression(compression)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}

	limits := a.cfg.FrameLimits()
	body, err := readBody(in, f.framed, alg, limits)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var (
		obs     deserialize.Observer
		metrics *prometheus.Registry
	)
	switch {
	case f.metrics:
		metrics = prometheus.NewRegistry()
		rec, err := observability.NewRecorder(metrics, a.cfg.Metrics.Namespace, a.logger)
		if err != nil {
			return err
		}
		obs = rec
	case a.cfg.Metrics.Enabled:
		obs = observability.DefaultRecorder(a.cfg.Metrics.Namespace, a.logger)
	}
	reg, err := deserialize.NewRegistry(a.cfg.RegistryOptions(obs))
	if err != nil {
		return err
	}

	rows, err := decodeRows(reg, cols, body, limits)
	a.logger.Debug().Int("columns", len(cols)).Int("rows", len(rows)).Msg("decoded body")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch f.format {
	case "text":
		err = writeText(out, cols, rows)
	default:
		err = writeYAML(out, cols, rows)
	}
	if err != nil {
		return err
	}

	if f.metrics {
		return writeMetrics(out, metrics)
	}
	return nil
}

func readBody(r io.Reader, framed bool, alg frame.Compression, limits frame.Limits) (frame.Slice, error) {
	if framed {
		fr, err := frame.ReadFrame(r, limits)
		if err != nil {
			return frame.Slice{}, err
		}
		return fr.Decode(alg, limits)
	}
	raw, err := io.ReadAll(io.LimitReader(r, int64(limits.MaxBodyBytes)+1))
	if err != nil {
		return frame.Slice{}, err
	}
	if len(raw) > limits.MaxBodyBytes {
		return frame.Slice{}, errBodyTooLarge
	}
	return frame.NewSlice(raw), nil
}

// decodeRows type-checks every column once and then decodes cells until the
// body is exhausted. A body that ends mid-row is an error.
func decodeRows(reg *deserialize.Registry, cols []column, body frame.Slice, limits frame.Limits) ([][]any, error) {
	bindings := make([]deserialize.Binding, len(cols))
	for i, col := range cols {
		b := reg.Lookup(col.typ)
		if err := b.TypeCheck(col.typ); err != nil {
			return nil, fmt.Errorf("column %s: %w", col.name, err)
		}
		bindings[i] = b
	}

	var rows [][]any
	for !body.IsEmpty() {
		row := make([]any, len(cols))
		for i, col := range cols {
			cell, err := limits.ReadCell(&body)
			if err != nil {
				return rows, fmt.Errorf("row %d column %s: %w", len(rows), col.name, err)
			}
			v, err := bindings[i].DeserializeAny(col.typ, cell)
			if err != nil {
				return rows, fmt.Errorf("row %d column %s: %w", len(rows), col.name, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseColumns splits a column list on ';' and on ',' outside angle
// brackets and quotes.
func parseColumns(list string) ([]column, error) {
	var (
		parts []string
		depth int
		quote bool
		start int
	)
	for i := 0; i < len(list); i++ {
		switch c := list[i]; {
		case c == '\'':
			quote = !quote
		case quote:
		case c == '<':
			depth++
		case c == '>':
			depth--
		case c == ';' || (c == ',' && depth == 0):
			parts = append(parts, list[start:i])
			start = i + 1
		}
	}
	parts = append(parts, list[start:])

	var cols []column
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := fmt.Sprintf("c%d", len(cols))
		if n, rest, ok := strings.Cut(part, ":"); ok && isIdent(strings.TrimSpace(n)) {
			name, part = strings.TrimSpace(n), strings.TrimSpace(rest)
		}
		typ, err := cqltype.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		cols = append(cols, column{name: name, typ: typ})
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("no column types given")
	}
	return cols, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c != '_' && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
