package collection

// Order is the ordering used by position queries.
type Order uint8

const (
	Ascending Order = iota
	Descending
)

// Token returns the wire token of o.
func (o Order) Token() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

func (o Order) String() string {
	return o.Token()
}

// ParseOrder accepts the wire tokens asc and desc.
func ParseOrder(s string) (Order, bool) {
	switch s {
	case "asc":
		return Ascending, true
	case "desc":
		return Descending, true
	}
	return Ascending, false
}
