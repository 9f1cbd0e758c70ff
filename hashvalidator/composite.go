package hashvalidator

import "strings"

// compositeValidator runs multiple validators over the same byte stream and
// is satisfied only when every child validator is satisfied. It is used for
// the MD5+CRC32C "composite" mode some callers request for belt-and-braces
// integrity checking.
type compositeValidator struct {
	children []Validator
}

// NewComposite returns a Validator that requires all of the given validators
// to match. A Composite with no children behaves like NewNull.
func NewComposite(children ...Validator) Validator {
	return &compositeValidator{children: children}
}

func (v *compositeValidator) Update(data []byte) {
	for _, c := range v.children {
		c.Update(data)
	}
}

// Finish finalizes every child against the same received digest string.
// GCS reports composite digests as a comma-separated list (e.g.
// "crc32c=..., md5=..."); received is matched against each child by name
// when it contains an algorithm prefix, and against every child verbatim
// otherwise.
func (v *compositeValidator) Finish(received string) Result {
	perAlgo := splitDigestList(received)

	computed := make([]string, 0, len(v.children))
	ok := true
	var combinedReceived []string
	for _, c := range v.children {
		want := received
		if d, found := perAlgo[c.Name()]; found {
			want = d
		}
		r := c.Finish(want)
		computed = append(computed, c.Name()+"="+r.Computed)
		if d, found := perAlgo[c.Name()]; found {
			combinedReceived = append(combinedReceived, c.Name()+"="+d)
		}
		if !r.Matches() {
			ok = false
		}
	}

	result := Result{
		Received: strings.Join(combinedReceived, ","),
		Computed: strings.Join(computed, ","),
	}
	if !ok {
		// Force Matches() to observe a mismatch even when one side ended up
		// empty (e.g. an unparseable received digest list).
		if result.Received == "" {
			result.Received = received
		}
		if result.Received == result.Computed {
			result.Received = result.Received + "\x00"
		}
	}
	return result
}

func (v *compositeValidator) Name() string {
	names := make([]string, len(v.children))
	for i, c := range v.children {
		names[i] = c.Name()
	}
	return "composite(" + strings.Join(names, ",") + ")"
}

// splitDigestList parses a "algo=value,algo=value" digest header into a
// per-algorithm map, matching the format GCS uses for x-goog-hash.
func splitDigestList(s string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return out
}
