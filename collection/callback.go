package collection

// Callback receives the outcome of an Operation exactly once. The set of
// implementations is closed, one per result shape: StatusCallback,
// ValueCallback and BulkCallback.
//
// Callbacks run on the goroutine that finished the operation, usually the
// connection reader. They must not block it.
type Callback interface {
	shape() Shape
	deliver(r *result)
}

// result is the accumulated outcome of an operation.
type result struct {
	status   Status
	value    int
	hasValue bool
	failed   map[int]Status
	err      error
}

// StatusCallback receives the single status of an existence check.
// err is non-nil only for a protocol violation.
type StatusCallback func(status Status, err error)

func (f StatusCallback) shape() Shape { return ShapeStatus }

func (f StatusCallback) deliver(r *result) {
	f(r.status, r.err)
}

// ValueCallback receives the status of a position or count query and, when
// ok is true, the non-negative value.
type ValueCallback func(status Status, value int, ok bool, err error)

func (f ValueCallback) shape() Shape { return ShapeValue }

func (f ValueCallback) deliver(r *result) {
	f(r.status, r.value, r.hasValue, r.err)
}

// BulkCallback receives the outcome of a piped request: the overall status
// and the statuses of the items that failed, keyed by submission index.
// failed is empty when every item succeeded and is never nil.
type BulkCallback func(status Status, failed map[int]Status, err error)

func (f BulkCallback) shape() Shape { return ShapeBulk }

func (f BulkCallback) deliver(r *result) {
	failed := r.failed
	if failed == nil {
		failed = map[int]Status{}
	}
	f(r.status, failed, r.err)
}
