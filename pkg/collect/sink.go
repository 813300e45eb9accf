package collect

import "github.com/aretw0/kiln/pkg/core"

// Collection is a Sink keeping every record in document order.
type Collection struct {
	Records []*core.Record
}

// CreateRecordShell implements Sink.
func (c *Collection) CreateRecordShell(id *string) *core.Record {
	return core.NewRecord(id)
}

// AddRecord implements Sink.
func (c *Collection) AddRecord(r *core.Record) error {
	c.Records = append(c.Records, r)
	return nil
}

// SinkFuncs adapts a pair of functions to Sink. A nil Create allocates with core.NewRecord.
type SinkFuncs struct {
	Create func(id *string) *core.Record
	Add    func(r *core.Record) error
}

// CreateRecordShell implements Sink.
func (s SinkFuncs) CreateRecordShell(id *string) *core.Record {
	if s.Create == nil {
		return core.NewRecord(id)
	}
	return s.Create(id)
}

// AddRecord implements Sink.
func (s SinkFuncs) AddRecord(r *core.Record) error {
	if s.Add == nil {
		return nil
	}
	return s.Add(r)
}
