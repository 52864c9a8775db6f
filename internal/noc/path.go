// File: internal/noc/path.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Parses the pathname form the external interface contract (spec.md §6)
// uses to name NoC connectors: "/noc/<kind>/<node>:<tag>", e.g.
// "/noc/mailbox/5:64" or "/noc/sync/0:3". A sync path may also name a
// node range "lo-hi:tag" for the master-and-workers barrier topology,
// where every node in [lo, hi] shares one receiver.

package noc

import (
	"strconv"
	"strings"

	"github.com/mfkiwl/multikernel/ipcerr"
)

// Kind enumerates the three connector families a path can name.
type Kind int

const (
	KindSync Kind = iota
	KindMailbox
	KindPortal
)

func (k Kind) String() string {
	switch k {
	case KindSync:
		return "sync"
	case KindMailbox:
		return "mailbox"
	case KindPortal:
		return "portal"
	default:
		return "unknown"
	}
}

// ParsedPath is the decoded form of a "/noc/<kind>/<node[-node]>:<tag>" path.
type ParsedPath struct {
	Kind    Kind
	NodeLo  int
	NodeHi  int // equals NodeLo unless the path names a range
	Tag     int
}

// ParsePath decodes path into its connector kind, node (or node range), and
// tag. It returns ErrInvalidArgument-shaped errors via ipcerr on malformed
// input, matching the rest of the package's error surface.
func ParsePath(path string) (ParsedPath, error) {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(parts) != 3 || parts[0] != "noc" {
		return ParsedPath{}, badPath(path)
	}

	var kind Kind
	switch parts[1] {
	case "sync":
		kind = KindSync
	case "mailbox":
		kind = KindMailbox
	case "portal":
		kind = KindPortal
	default:
		return ParsedPath{}, badPath(path)
	}

	nodeAndTag := strings.SplitN(parts[2], ":", 2)
	if len(nodeAndTag) != 2 {
		return ParsedPath{}, badPath(path)
	}
	tag, err := strconv.Atoi(nodeAndTag[1])
	if err != nil {
		return ParsedPath{}, badPath(path)
	}

	lo, hi, err := parseNodeSpec(nodeAndTag[0])
	if err != nil {
		return ParsedPath{}, badPath(path)
	}

	return ParsedPath{Kind: kind, NodeLo: lo, NodeHi: hi, Tag: tag}, nil
}

func badPath(path string) error {
	return ipcerr.New(ipcerr.InvalidArgument, "noc: malformed path").WithContext("path", path)
}

func parseNodeSpec(spec string) (lo, hi int, err error) {
	if i := strings.IndexByte(spec, '-'); i >= 0 {
		lo, err = strconv.Atoi(spec[:i])
		if err != nil {
			return 0, 0, err
		}
		hi, err = strconv.Atoi(spec[i+1:])
		return lo, hi, err
	}
	lo, err = strconv.Atoi(spec)
	return lo, lo, err
}
