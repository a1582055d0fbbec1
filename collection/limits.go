package collection

// Limits is the configuration surface bounding what a request may carry.
// Requests exceeding a limit are rejected before an Operation is created.
type Limits struct {
	// MaxKeyLength is the maximum item key length in bytes.
	MaxKeyLength int

	// MaxValueSize is the maximum size of a single element value.
	MaxValueSize int

	// MaxPipedItemCount is the maximum number of items in one piped insert or delete.
	MaxPipedItemCount int

	// MaxPipedUpdateCount is the maximum number of items in one piped update.
	MaxPipedUpdateCount int

	// MaxPipedPayloadSize is the maximum size of a rendered piped request.
	MaxPipedPayloadSize int
}

// DefaultLimits returns the limits of a stock server.
func DefaultLimits() Limits {
	return Limits{
		MaxKeyLength:        4000,
		MaxValueSize:        1024 * 1024,
		MaxPipedItemCount:   500,
		MaxPipedUpdateCount: 500,
		MaxPipedPayloadSize: 16 * 1024 * 1024,
	}
}

// WithDefaults fills zero fields from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.MaxKeyLength <= 0 {
		l.MaxKeyLength = d.MaxKeyLength
	}
	if l.MaxValueSize <= 0 {
		l.MaxValueSize = d.MaxValueSize
	}
	if l.MaxPipedItemCount <= 0 {
		l.MaxPipedItemCount = d.MaxPipedItemCount
	}
	if l.MaxPipedUpdateCount <= 0 {
		l.MaxPipedUpdateCount = d.MaxPipedUpdateCount
	}
	if l.MaxPipedPayloadSize <= 0 {
		l.MaxPipedPayloadSize = d.MaxPipedPayloadSize
	}
	return l
}

// ValidateKey checks that key can be sent on the wire.
// Keys must be non-empty, at most MaxKeyLength bytes and contain no whitespace
// or control characters.
func (l Limits) ValidateKey(key string) error {
	l = l.WithDefaults()

	if len(key) < MinKeyLength {
		return &PreconditionError{Message: "key is empty"}
	}
	if len(key) > l.MaxKeyLength {
		return &PreconditionError{Message: "key exceeds maximum length"}
	}
	for i := 0; i < len(key); i++ {
		if key[i] <= ' ' || key[i] == 0x7f {
			return &PreconditionError{Message: "key contains whitespace or control characters"}
		}
	}
	return nil
}
