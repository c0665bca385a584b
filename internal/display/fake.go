package display

import "time"

// Op records one display command for test assertions.
type Op struct {
	Name string // "clear", "text", "scroll", "brightness"
	Text string
	Dot  bool
	Step time.Duration
	Val  int
}

// Fake is a test double that records every display command.
type Fake struct {
	Ops    []Op
	Ticks  int
	Closed bool
}

// NewFake creates a recording display.
func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) Clear() {
	f.Ops = append(f.Ops, Op{Name: "clear"})
}

func (f *Fake) WriteText(text string, dotOn bool) {
	f.Ops = append(f.Ops, Op{Name: "text", Text: text, Dot: dotOn})
}

func (f *Fake) StartScroll(text string, step time.Duration) {
	f.Ops = append(f.Ops, Op{Name: "scroll", Text: text, Step: step})
}

func (f *Fake) SetBrightness(level int) {
	f.Ops = append(f.Ops, Op{Name: "brightness", Val: level})
}

func (f *Fake) Tick() { f.Ticks++ }

func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent op with the given name, if any.
func (f *Fake) Last(name string) (Op, bool) {
	for i := len(f.Ops) - 1; i >= 0; i-- {
		if f.Ops[i].Name == name {
			return f.Ops[i], true
		}
	}
	return Op{}, false
}

// Count returns how many ops with the given name were recorded.
func (f *Fake) Count(name string) int {
	n := 0
	for _, op := range f.Ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// Reset clears recorded ops.
func (f *Fake) Reset() {
	f.Ops = nil
	f.Ticks = 0
	f.Closed = false
}
