package tone

// Fake records requested patterns for tests.
type Fake struct {
	Singles int
	Doubles int
}

func (f *Fake) Confirm()       { f.Singles++ }
func (f *Fake) ConfirmDouble() { f.Doubles++ }
func (f *Fake) Close() error   { return nil }
