package logger

// NewNop returns a Logger that discards everything. Fatal does not exit.
func NewNop() Logger { return nop{} }

type nop struct{}

func (nop) Debug(string, ...Field) {}
func (nop) Info(string, ...Field) {}
func (nop) Warn(string, ...Field) {}
func (nop) Error(string, ...Field) {}
func (nop) Fatal(string, ...Field) {}
func (n nop) With(...Field) Logger { return n }
func (nop) Sync() error { return nil }
