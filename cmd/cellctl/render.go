package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danmuck/cqlcell/internal/protocol/cqlvalue"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
	"github.com/google/uuid"
	"gopkg.in/inf.v0"
	"gopkg.in/yaml.v3"
)

const emptyMarker = "<empty>"

// render converts a decoded cell into plain values yaml can print. Blobs
// become 0x-prefixed hex, temporal values RFC 3339 strings. Decimals with
// extreme scales render in scientific notation.
func render(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case cqlvalue.Empty:
		return emptyMarker
	case []byte:
		return hexString(x)
	case frame.Bytes:
		return hexString(x)
	case cqlvalue.Blob:
		return hexString(x)
	case cqlvalue.Custom:
		return map[string]any{"class": x.Class, "data": hexString(x.Data)}
	case cqlvalue.UUID:
		return uuid.UUID(x).String()
	case cqlvalue.TimeUUID:
		return uuid.UUID(x).String()
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case cqlvalue.Timestamp:
		return x.Time().Format(time.RFC3339Nano)
	case cqlvalue.Date:
		return x.Time().Format(time.DateOnly)
	case time.Duration:
		return x.String()
	case cqlvalue.Time:
		return x.Duration().String()
	case cqlvalue.Inet:
		return x.Addr.String()
	case cqlvalue.Duration:
		return fmt.Sprintf("%dmo%dd%dns", x.Months, x.Days, x.Nanoseconds)
	case *inf.Dec:
		if x == nil {
			return nil
		}
		return cqlvalue.Decimal{
			Unscaled: cqlvalue.VarintFromBigInt(x.UnscaledBig()),
			Scale:    int32(x.Scale()),
		}.String()
	case cqlvalue.List:
		return renderAll(x)
	case cqlvalue.Set:
		return renderAll(x)
	case cqlvalue.Tuple:
		return renderAll(x)
	case cqlvalue.Map:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = map[string]any{"key": render(e.Key), "value": render(e.Value)}
		}
		return out
	case cqlvalue.UDT:
		out := make(map[string]any, len(x.Fields))
		for _, f := range x.Fields {
			out[f.Name] = render(f.Value)
		}
		return out
	case fmt.Stringer:
		return x.String()
	default:
		return x
	}
}

func renderAll(vs []cqlvalue.Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = render(v)
	}
	return out
}

func hexString(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// writeYAML prints rows as a sequence of mappings with keys in column order.
func writeYAML(w io.Writer, cols []column, rows [][]any) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, col := range cols {
			var val yaml.Node
			if err := val.Encode(render(row[i])); err != nil {
				return fmt.Errorf("row column %s: %w", col.name, err)
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col.name},
				&val,
			)
		}
		doc.Content = append(doc.Content, m)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func writeText(w io.Writer, cols []column, rows [][]any) error {
	for n, row := range rows {
		fields := make([]string, len(cols))
		for i, col := range cols {
			v := render(row[i])
			if v == nil {
				v = "null"
			}
			fields[i] = fmt.Sprintf("%s=%v", col.name, v)
		}
		if _, err := fmt.Fprintf(w, "row %d: %s\n", n, strings.Join(fields, " ")); err != nil {
			return err
		}
	}
	return nil
}
