// Package hashvalidator provides incremental content hashing with a
// pluggable algorithm, compared against a server-reported digest at
// finalization.
package hashvalidator

// Result is the outcome of finalizing a Validator. Both fields empty means
// the validator was disabled; non-empty and unequal means the caller is
// entitled to treat the operation as failed.
type Result struct {
	Received string
	Computed string
}

// Matches reports whether the validator should be considered satisfied:
// either it never produced a digest (disabled), or the two digests agree.
func (r Result) Matches() bool {
	if r.Received == "" || r.Computed == "" {
		return true
	}
	return r.Received == r.Computed
}

// Validator incrementally hashes bytes as they are committed or read, and
// compares the result against a server-reported digest on Finish.
type Validator interface {
	// Update feeds more bytes into the running digest. It is commutative
	// with chunk boundaries: splitting a call into several smaller calls
	// with the same concatenated bytes produces the same final digest.
	Update(data []byte)

	// Finish freezes the computed digest and pairs it with the received
	// (server-reported) digest.
	Finish(received string) Result

	// Name identifies the algorithm, for diagnostics and for Composite.
	Name() string
}
