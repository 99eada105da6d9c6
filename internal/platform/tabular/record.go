package tabular

// Field is one named value inside a Record. Order of fields is the order
// they were first set, which downstream tables preserve as column order.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered set of named values, one fetched datum from an
// upstream feed. A nil value means the feed reported the field as null.
type Record struct {
	fields []Field
	index  map[string]int
}

func NewRecord() *Record {
	return &Record{index: make(map[string]int)}
}

// Set adds the field, or overwrites its value when the name is already
// present. The original position is kept on overwrite.
func (r *Record) Set(name string, value any) *Record {
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = value
		return r
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
	return r
}

func (r *Record) Get(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

func (r *Record) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.index[name]
	return ok
}

func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

func (r *Record) Fields() []Field {
	if r == nil {
		return nil
	}
	return append([]Field(nil), r.fields...)
}

func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{
		fields: append([]Field(nil), r.fields...),
		index:  make(map[string]int, len(r.index)),
	}
	for name, i := range r.index {
		out.index[name] = i
	}
	return out
}
