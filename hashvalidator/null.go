package hashvalidator

// nullValidator implements Validator but never computes a digest. It backs
// the "disabled" configuration named in the spec.
type nullValidator struct{}

// NewNull returns a Validator that performs no hashing at all.
func NewNull() Validator { return nullValidator{} }

func (nullValidator) Update([]byte) {}

func (nullValidator) Finish(string) Result { return Result{} }

func (nullValidator) Name() string { return "null" }
