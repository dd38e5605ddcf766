package models

// ChannelTable is an ordered, read-only sequence of channel records.
// The zero value is an empty table.
type ChannelTable struct {
	records []ChannelRecord
}

// NewChannelTable wraps records. The table takes ownership of the slice;
// callers must not modify it afterwards.
func NewChannelTable(records []ChannelRecord) *ChannelTable {
	return &ChannelTable{records: records}
}

// Len returns the number of rows. A nil table has zero rows.
func (t *ChannelTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns the row at index i.
func (t *ChannelTable) At(i int) ChannelRecord {
	return t.records[i]
}

// Records returns a copy of the rows.
func (t *ChannelTable) Records() []ChannelRecord {
	if t.Len() == 0 {
		return []ChannelRecord{}
	}
	out := make([]ChannelRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Each calls fn for every row in order.
func (t *ChannelTable) Each(fn func(i int, r ChannelRecord)) {
	if t == nil {
		return
	}
	for i, r := range t.records {
		fn(i, r)
	}
}
