// Author: momentics <momentics@gmail.com>

package server

import (
	"testing"
	"time"

	"github.com/mfkiwl/multikernel/internal/noc"
	"github.com/mfkiwl/multikernel/ipc/mailbox"
)

type echoDispatcher struct{ lastReq Request }

func (d *echoDispatcher) Handle(req Request) Response {
	d.lastReq = req
	return Response{Opcode: req.Opcode, Payload: req.Header}
}

func TestSingleFrameDispatch(t *testing.T) {
	fabric := noc.NewFabric()
	const serverNode, clientNode = 0, 1
	d := &echoDispatcher{}
	srv := New(fabric, serverNode, d, nil)
	go srv.Serve()
	time.Sleep(10 * time.Millisecond)

	out := mailbox.Open(fabric, serverNode)
	in := mailbox.Create(fabric, clientNode)
	frame := EncodeRequestFrame(0, 42, clientNode, []byte("ping"), mailbox.MsgSize)
	if err := out.Write(frame); err != nil {
		t.Fatal(err)
	}

	reply, err := in.Read()
	if err != nil {
		t.Fatal(err)
	}
	resp := DecodeFrame(reply)
	if resp.Opcode != 42 {
		t.Fatalf("expected opcode 42, got %d", resp.Opcode)
	}
}

func TestTwoFrameRequestPairing(t *testing.T) {
	fabric := noc.NewFabric()
	const serverNode, clientNode = 2, 3
	d := &echoDispatcher{}
	srv := New(fabric, serverNode, d, TwoFrameOpcodes{7: true})
	go srv.Serve()
	time.Sleep(10 * time.Millisecond)

	out := mailbox.Open(fabric, serverNode)
	in := mailbox.Create(fabric, clientNode)

	first := EncodeRequestFrame(10, 7, clientNode, []byte("header"), mailbox.MsgSize)
	second := EncodeRequestFrame(11, 7, clientNode, []byte("data"), mailbox.MsgSize)
	if err := out.Write(first); err != nil {
		t.Fatal(err)
	}
	if err := out.Write(second); err != nil {
		t.Fatal(err)
	}

	if _, err := in.Read(); err != nil {
		t.Fatal(err)
	}

	if string(d.lastReq.Header[:6]) != "header" {
		t.Fatalf("expected header payload, got %q", d.lastReq.Header)
	}
	if string(d.lastReq.Data[:4]) != "data" {
		t.Fatalf("expected data payload, got %q", d.lastReq.Data)
	}
}
