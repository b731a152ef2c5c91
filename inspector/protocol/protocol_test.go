package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("lookup: %w", Errorf(NotFound, "no node with id %d", 7))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected wrapped error to be of kind not-found")
	}
	if errors.Is(err, ErrSyntax) {
		t.Errorf("not-found error matches syntax marker")
	}
	if KindOf(err) != NotFound {
		t.Errorf("expected kind not-found, have %s", KindOf(err))
	}
	if KindOf(errors.New("plain")) != Internal {
		t.Errorf("expected plain errors to be internal")
	}
	obj := NewErrorObject(err)
	if obj.Code != -32000 || obj.Message != "lookup: no node with id 7" {
		t.Errorf("unexpected error object %+v", obj)
	}
}

func TestTypedHandler(t *testing.T) {
	type params struct {
		NodeID NodeID `json:"nodeId"`
	}
	h := Typed(func(ctx context.Context, p params) (int, error) {
		if p.NodeID == 0 {
			return 0, Errorf(InvalidArgument, "missing node id")
		}
		return int(p.NodeID) * 2, nil
	})
	r, err := h(context.Background(), json.RawMessage(`{"nodeId":21}`))
	if err != nil || r.(int) != 42 {
		t.Errorf("expected 42, have %v (%v)", r, err)
	}
	if _, err = h(context.Background(), nil); KindOf(err) != InvalidArgument {
		t.Errorf("expected missing params to yield zero value, have %v", err)
	}
	if _, err = h(context.Background(), json.RawMessage(`{"nodeId":"x"}`)); KindOf(err) != InvalidArgument {
		t.Errorf("expected malformed params to be an invalid argument, have %v", err)
	}
}

func TestHandlerTable(t *testing.T) {
	table := HandlerTable{}
	table.Register("DOM.undo", func(context.Context, json.RawMessage) (interface{}, error) {
		return Empty{}, nil
	})
	if _, err := table.Lookup("DOM.undo"); err != nil {
		t.Error(err)
	}
	if _, err := table.Lookup("DOM.fly"); !errors.Is(err, ErrMethodNotFound) {
		t.Errorf("expected method-not-found, have %v", err)
	}
}

func TestEncodeEvent(t *testing.T) {
	b, err := Encode(Event{
		Method: EventChildNodeCountUpdated,
		Params: ChildNodeCountUpdatedParams{NodeID: 3, ChildNodeCount: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	expected := `{"method":"DOM.childNodeCountUpdated","params":{"nodeId":3,"childNodeCount":2}}`
	if string(b) != expected {
		t.Errorf("expected %s, have %s", expected, b)
	}
}
