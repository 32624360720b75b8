package colex

// Record is one row of data: a mapping from field name to value. The single
// "absent value" representation is an untyped nil; a missing key and a nil
// value are equivalent after normalization.
type Record map[string]interface{}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RecordsToColumns pivots row-oriented records into column-oriented slices.
// The column set is the union of all keys; rows missing a key contribute nil.
func RecordsToColumns(records []Record) map[string][]interface{} {
	cols := make(map[string][]interface{})
	for _, rec := range records {
		for k := range rec {
			if _, ok := cols[k]; !ok {
				cols[k] = make([]interface{}, len(records))
			}
		}
	}
	for i, rec := range records {
		for k := range cols {
			if v, ok := rec[k]; ok {
				cols[k][i] = v
			}
		}
	}
	return cols
}

// ColumnsToRecords pivots column-oriented slices back into records.
// All columns must have equal length; ragged input returns nil.
func ColumnsToRecords(cols map[string][]interface{}) []Record {
	n := -1
	for _, vals := range cols {
		if n == -1 {
			n = len(vals)
		} else if len(vals) != n {
			return nil
		}
	}
	if n <= 0 {
		return []Record{}
	}
	records := make([]Record, n)
	for i := 0; i < n; i++ {
		rec := make(Record, len(cols))
		for k, vals := range cols {
			rec[k] = vals[i]
		}
		records[i] = rec
	}
	return records
}

// NormalizeNulls returns a copy of the records with every value that
// represents "missing" replaced by nil. Typed nils from interface conversion
// and NaN floats (the tabular missing marker for numeric columns) both
// normalize to the universal null.
func NormalizeNulls(records []Record) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		clean := make(Record, len(rec))
		for k, v := range rec {
			if isNull(v) {
				clean[k] = nil
			} else {
				clean[k] = v
			}
		}
		out[i] = clean
	}
	return out
}

func isNull(v interface{}) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok && f != f {
		return true
	}
	if f, ok := v.(float32); ok && f != f {
		return true
	}
	return false
}
