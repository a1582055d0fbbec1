// Package collection implements the ASCII collection protocol of Arcus, a
// memcached-compatible cache server with server-side B+Tree, list, set and
// map types.
//
// The package has no network code. It renders requests and decodes response
// lines; a transport moves the bytes.
//
// # Commands
//
// Commands are built with the New* constructors and validated against
// Limits when an Operation is created:
//
//	cmd := collection.NewFindPosition("ranking", collection.UintBKey(42), collection.Descending)
//
// Piped commands carry many items in one request. Every item line but the
// last ends with "pipe" and the server answers with one status line per item
// followed by END.
//
// # Operations
//
// An Operation drives one command through its lifecycle:
//
//	op, err := collection.NewOperation(cmd, collection.DefaultLimits(),
//	    collection.ValueCallback(func(status collection.Status, pos int, ok bool, err error) {
//	        ...
//	    }))
//	buf, _ := op.Buffer()
//	conn.Write(buf)
//	op.WriteComplete()
//	err = collection.ReadResponse(reader, op)
//
// Server-reported failures such as NOT_FOUND or TYPE_MISMATCH are statuses,
// not errors. Errors are reserved for rejected requests (*PreconditionError),
// responses that break the protocol (*ProtocolError) and I/O failures
// (*ConnectionError). Use ShouldCloseConnection to decide whether the
// connection can be reused.
//
// # Bulk results
//
// Piped commands deliver the statuses of failed items only, keyed by
// submission index: an empty map means every item succeeded. When the key
// does not exist the server sends a single NOT_FOUND line for all items and
// that status is reported for every index.
package collection
