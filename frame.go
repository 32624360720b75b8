package colex

// Tabular interop. The tabular value is an Apache Arrow record batch: column
// types are assigned from the schema's Kind map (never inferred, so an
// all-null integer column is still int64) and the universal null maps onto
// the Arrow validity bitmap in both directions.
//
// Kind to Arrow type mapping:
//
//	Int      -> int64
//	Float    -> float64
//	String   -> utf8
//	Bool     -> bool
//	Date     -> date32
//	DateTime -> timestamp[ms, UTC]
//	Decimal  -> utf8 (lossless textual form)
//	List     -> utf8 (JSON-encoded)
//	Map      -> utf8 (JSON-encoded)
//	Nested   -> utf8 (JSON-encoded)

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/memory"
)

const secondsPerDay = 86400

func arrowType(k Kind) arrow.DataType {
	switch k {
	case KindInt:
		return arrow.PrimitiveTypes.Int64
	case KindFloat:
		return arrow.PrimitiveTypes.Float64
	case KindBool:
		return arrow.FixedWidthTypes.Boolean
	case KindDate:
		return arrow.FixedWidthTypes.Date32
	case KindDateTime:
		return &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}
	default:
		// String, Decimal, List, Map, Nested all travel as utf8.
		return arrow.BinaryTypes.String
	}
}

// ArrowSchema returns the Arrow schema for this collection type, with one
// nullable field per declared schema field in declaration order.
func (t *CollectionType) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, 0, t.schema.Len())
	for _, f := range t.schema.fields {
		fields = append(fields, arrow.Field{
			Name:     f.Name,
			Type:     arrowType(f.Kind),
			Nullable: true,
		})
	}
	return arrow.NewSchema(fields, nil)
}

// ToFrame converts the collection's records to a column-oriented Arrow
// record batch. The caller owns the returned record and must Release it.
func (c *Collection) ToFrame() (arrow.Record, error) {
	schema := c.typ.ArrowSchema()
	builder := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer builder.Release()

	data := c.Data()
	for i, f := range c.typ.schema.fields {
		if err := appendColumn(builder.Field(i), f, data, c.serializer); err != nil {
			return nil, &CollectionLoadError{Collection: c.typ.FullName(), Err: err}
		}
	}
	return builder.NewRecord(), nil
}

func appendColumn(b array.Builder, f Field, data []Record, s *Serializer) error {
	for row, rec := range data {
		v := rec[f.Name]
		if v == nil {
			b.AppendNull()
			continue
		}
		if err := appendValue(b, f, v, s); err != nil {
			return fmt.Errorf("row %d: field %s: %v", row, f.Name, err)
		}
	}
	return nil
}

func appendValue(b array.Builder, f Field, v interface{}, s *Serializer) error {
	switch f.Kind {
	case KindInt:
		n, err := coerceInt(v)
		if err != nil {
			return err
		}
		b.(*array.Int64Builder).Append(n.(int64))
	case KindFloat:
		fl, err := coerceFloat(v)
		if err != nil {
			return err
		}
		b.(*array.Float64Builder).Append(fl.(float64))
	case KindBool:
		bv, ok := v.(bool)
		if !ok {
			return fmt.Errorf("not a valid boolean: %v", v)
		}
		b.(*array.BooleanBuilder).Append(bv)
	case KindDate:
		// Dumped records carry dates as strings; parse per the schema.
		cv, err := s.coerceDate(f, v)
		if err != nil {
			return err
		}
		t := cv.(time.Time)
		b.(*array.Date32Builder).Append(arrow.Date32(t.Unix() / secondsPerDay))
	case KindDateTime:
		cv, err := s.coerceDateTime(f, v)
		if err != nil {
			return err
		}
		t := cv.(time.Time)
		b.(*array.TimestampBuilder).Append(arrow.Timestamp(t.UnixMilli()))
	case KindString, KindDecimal:
		sv, ok := v.(string)
		if !ok {
			return fmt.Errorf("not a valid string: %v", v)
		}
		b.(*array.StringBuilder).Append(sv)
	case KindList, KindMap, KindNested:
		encoded, err := json.Marshal(v)
		if err != nil {
			return err
		}
		b.(*array.StringBuilder).Append(string(encoded))
	default:
		return fmt.Errorf("unsupported kind %s", f.Kind)
	}
	return nil
}

// LoadFrame flattens an Arrow record batch to row records, translating the
// missing-value marker to the universal null, and loads the result. Column
// names must match declared fields; mismatches fail validation the same way
// record input does.
func (c *Collection) LoadFrame(frame arrow.Record) error {
	records, err := c.frameToRecords(frame)
	if err != nil {
		return &CollectionLoadError{Collection: c.typ.FullName(), Err: err}
	}
	return c.LoadRecords(records)
}

func (c *Collection) frameToRecords(frame arrow.Record) ([]Record, error) {
	n := int(frame.NumRows())
	records := make([]Record, n)
	for i := range records {
		records[i] = make(Record, int(frame.NumCols()))
	}

	for j := 0; j < int(frame.NumCols()); j++ {
		name := frame.Schema().Field(j).Name
		field, declared := c.typ.schema.Field(name)
		col := frame.Column(j)
		for i := 0; i < n; i++ {
			if col.IsNull(i) {
				records[i][name] = nil
				continue
			}
			v, err := frameValue(col, i)
			if err != nil {
				return nil, fmt.Errorf("column %s: %v", name, err)
			}
			// Compound kinds travel as JSON-encoded utf8; decode them
			// back before validation. Undeclared columns pass through
			// raw so the serializer can report them.
			if declared && isCompound(field.Kind) {
				if sv, ok := v.(string); ok {
					var decoded interface{}
					if err := json.Unmarshal([]byte(sv), &decoded); err != nil {
						return nil, fmt.Errorf("column %s row %d: %v", name, i, err)
					}
					v = decoded
				}
			}
			records[i][name] = v
		}
	}
	return records, nil
}

func isCompound(k Kind) bool {
	return k == KindList || k == KindMap || k == KindNested
}

func frameValue(col arrow.Array, i int) (interface{}, error) {
	switch arr := col.(type) {
	case *array.Int64:
		return arr.Value(i), nil
	case *array.Int32:
		return int64(arr.Value(i)), nil
	case *array.Float64:
		return arr.Value(i), nil
	case *array.Float32:
		return float64(arr.Value(i)), nil
	case *array.String:
		return arr.Value(i), nil
	case *array.Boolean:
		return arr.Value(i), nil
	case *array.Date32:
		return time.Unix(int64(arr.Value(i))*secondsPerDay, 0).UTC(), nil
	case *array.Timestamp:
		unit := arr.DataType().(*arrow.TimestampType).Unit
		return timestampToTime(arr.Value(i), unit), nil
	}
	return nil, fmt.Errorf("unsupported arrow type %s", col.DataType())
}

func timestampToTime(ts arrow.Timestamp, unit arrow.TimeUnit) time.Time {
	switch unit {
	case arrow.Second:
		return time.Unix(int64(ts), 0).UTC()
	case arrow.Millisecond:
		return time.UnixMilli(int64(ts)).UTC()
	case arrow.Microsecond:
		return time.UnixMicro(int64(ts)).UTC()
	default:
		return time.Unix(0, int64(ts)).UTC()
	}
}
