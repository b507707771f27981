package testutil

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/hclgraph/internal/hcldoc"
)

// Recorder is an hcldoc.Sink that records every event as a short string,
// e.g. "start Window", "member title", "literal", "reference ok", "end member",
// "end Window".
type Recorder struct {
	Events []string
	Values []hcldoc.Value

	types []string
	// FailOn makes the recorder return an error for the matching event.
	FailOn string
}

var _ hcldoc.Sink = (*Recorder)(nil)

func (r *Recorder) record(event string) error {
	r.Events = append(r.Events, event)
	if r.FailOn != "" && r.FailOn == event {
		return fmt.Errorf("recorder asked to fail on %q", event)
	}
	return nil
}

// StartObject implements hcldoc.Sink.
func (r *Recorder) StartObject(typeName string, _ hcl.Range) error {
	r.types = append(r.types, typeName)
	return r.record("start " + typeName)
}

// StartMember implements hcldoc.Sink.
func (r *Recorder) StartMember(name string, collection bool, _ hcl.Range) error {
	if collection {
		return r.record("collection " + name)
	}
	return r.record("member " + name)
}

// Value implements hcldoc.Sink.
func (r *Recorder) Value(v hcldoc.Value) error {
	r.Values = append(r.Values, v)
	if v.Kind == hcldoc.Reference {
		return r.record("reference " + v.Name)
	}
	return r.record(v.Kind.String())
}

// EndMember implements hcldoc.Sink.
func (r *Recorder) EndMember() error {
	return r.record("end member")
}

// EndObject implements hcldoc.Sink.
func (r *Recorder) EndObject() error {
	typeName := r.types[len(r.types)-1]
	r.types = r.types[:len(r.types)-1]
	return r.record("end " + typeName)
}
