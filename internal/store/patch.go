package store

// Field is one column assignment of a partial update.
type Field struct {
	Column string
	Value  any
}

// Patch is an ordered set of column assignments. Only columns that were Set are written.
type Patch struct {
	fields []Field
}

// Set assigns column. Setting the same column twice keeps the last value.
func (p *Patch) Set(column string, value any) {
	for i := range p.fields {
		if p.fields[i].Column == column {
			p.fields[i].Value = value
			return
		}
	}
	p.fields = append(p.fields, Field{Column: column, Value: value})
}

// Fields returns the assignments in the order they were first set.
func (p Patch) Fields() []Field { return p.fields }

// Empty reports whether nothing was set.
func (p Patch) Empty() bool { return len(p.fields) == 0 }

// Has reports whether column was set.
func (p Patch) Has(column string) bool {
	for _, f := range p.fields {
		if f.Column == column {
			return true
		}
	}
	return false
}

// Without returns a copy of p without column.
func (p Patch) Without(column string) Patch {
	out := Patch{fields: make([]Field, 0, len(p.fields))}
	for _, f := range p.fields {
		if f.Column != column {
			out.fields = append(out.fields, f)
		}
	}
	return out
}
