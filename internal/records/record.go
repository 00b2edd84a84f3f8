package records

// Record is one catalog entity as read from the data store. Field types are
// not validated; numeric values stay json.Number so they re-encode unchanged.
type Record map[string]any

// Project returns a copy of r holding only the given fields. Fields missing
// from r stay missing.
func (r Record) Project(fields ...string) Record {
	out := make(Record, len(fields))
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

// Projector returns a function projecting every record onto fields.
func Projector(fields ...string) func([]Record) []Record {
	return func(in []Record) []Record {
		out := make([]Record, len(in))
		for i, r := range in {
			out[i] = r.Project(fields...)
		}
		return out
	}
}
