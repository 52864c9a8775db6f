// File: nameservice/client.go
// Author: momentics <momentics@gmail.com>
//
// Client serializes every call through one mutex the way a per-core name
// service client guards its single outstanding request in spec.md §4.6: a
// core may have only one name-service call in flight, so there is no need
// for per-call request IDs. A TryWrite busy (EAGAIN) is retried exactly
// once before the call fails.

package nameservice

import (
	"sync"

	"github.com/mfkiwl/multikernel/internal/noc"
	"github.com/mfkiwl/multikernel/ipc/mailbox"
	"github.com/mfkiwl/multikernel/ipcerr"
)

// Client is a handle bound to one local node, used to talk to the name
// service server running at ServerNode.
type Client struct {
	fabric     *noc.Fabric
	serverNode int
	node       int

	mu sync.Mutex
}

// NewClient creates a client local to node, talking to the server at
// serverNode.
func NewClient(fabric *noc.Fabric, serverNode, node int) *Client {
	return &Client{fabric: fabric, serverNode: serverNode, node: node}
}

func (c *Client) call(req Request) (Reply, error) {
	if !validName(req.Name) {
		return Reply{}, ipcerr.ErrInvalidArgument
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	req.ReplyNode = int32(c.node)
	out := mailbox.Open(c.fabric, c.serverNode)
	in := mailbox.Create(c.fabric, c.node)

	err := out.TryWrite(req.Encode())
	if ipcerr.CodeOf(err) == ipcerr.Busy {
		err = out.TryWrite(req.Encode())
	}
	if err != nil {
		return Reply{}, err
	}

	frame, err := in.Read()
	if err != nil {
		return Reply{}, err
	}
	return DecodeReply(frame), nil
}

// Link binds name to node (link).
func (c *Client) Link(name string, node int) error {
	reply, err := c.call(Request{Op: OpLink, Name: name, Node: int32(node)})
	return replyToErr(reply, err)
}

// Unlink removes name's binding (unlink).
func (c *Client) Unlink(name string) error {
	reply, err := c.call(Request{Op: OpUnlink, Name: name})
	return replyToErr(reply, err)
}

// Lookup resolves name to its bound node (lookup).
func (c *Client) Lookup(name string) (int, error) {
	reply, err := c.call(Request{Op: OpLookup, Name: name})
	if e := replyToErr(reply, err); e != nil {
		return 0, e
	}
	return int(reply.Node), nil
}

// Register binds name to this client's own node and port (register).
func (c *Client) Register(name string, port int) error {
	reply, err := c.call(Request{Op: OpRegister, Name: name, Port: int32(port)})
	return replyToErr(reply, err)
}

// Unregister removes name's registered binding (unregister). Only the node
// that registered it may remove it.
func (c *Client) Unregister(name string) error {
	reply, err := c.call(Request{Op: OpUnregister, Name: name})
	return replyToErr(reply, err)
}

// AddressLookup resolves a registered name to its (node, port) pair
// (address_lookup). It fails NotFound for a name that was only linked.
func (c *Client) AddressLookup(name string) (node, port int, err error) {
	reply, callErr := c.call(Request{Op: OpAddressLookup, Name: name})
	if e := replyToErr(reply, callErr); e != nil {
		return 0, 0, e
	}
	return int(reply.Node), int(reply.Port), nil
}

func replyToErr(reply Reply, err error) error {
	if err != nil {
		return err
	}
	if reply.Status == StatusFailure {
		switch reply.Errno {
		case ErrnoNotFound:
			return ipcerr.ErrNotFound
		case ErrnoAlreadyExists:
			return ipcerr.ErrAlreadyExists
		case ErrnoPermissionDenied:
			return ipcerr.ErrPermissionDenied
		default:
			return ipcerr.ErrInvalidArgument
		}
	}
	return nil
}
