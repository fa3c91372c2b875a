package links

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrNoRoot is returned when no server with zero hops was collected.
var ErrNoRoot = errors.New("links: no root server found")

// Server is one entry of a LINKS reply (numeric 364).
type Server struct {
	Name        string
	Hub         string // upstream server
	Hops        int
	Description string
}

// ParseReply reads the parameters of a 364 reply:
// <client> <server> <hub> :<hops> <description>
func ParseReply(params []string) (*Server, error) {
	if len(params) < 4 {
		return nil, fmt.Errorf("links: short reply %q", params)
	}
	hopText, desc, _ := strings.Cut(params[3], " ")
	hops, err := strconv.Atoi(hopText)
	if err != nil || hops < 0 {
		return nil, fmt.Errorf("links: bad hop count %q", hopText)
	}
	return &Server{Name: params[1], Hub: params[2], Hops: hops, Description: desc}, nil
}

// Tree collects LINKS entries until the end of the reply.
type Tree struct {
	servers map[string]*Server
}

func NewTree() *Tree {
	return &Tree{servers: make(map[string]*Server)}
}

// Add records s, replacing an earlier entry with the same name.
func (t *Tree) Add(s *Server) {
	t.servers[strings.ToLower(s.Name)] = s
}

func (t *Tree) Len() int {
	return len(t.servers)
}

// ShortNames returns the first label of every server name, sorted.
func (t *Tree) ShortNames() []string {
	names := make([]string, 0, len(t.servers))
	for _, s := range t.servers {
		short, _, _ := strings.Cut(s.Name, ".")
		names = append(names, short)
	}
	sort.Strings(names)
	return names
}

// Lines renders the tree depth first from the root, children sorted by
// name. Servers not reachable from the root are left out.
func (t *Tree) Lines() ([]string, error) {
	var root *Server
	for _, s := range t.servers {
		if s.Hops == 0 {
			root = s
			break
		}
	}
	if root == nil {
		return nil, ErrNoRoot
	}

	children := make(map[string][]*Server)
	for _, s := range t.servers {
		if s == root {
			continue
		}
		hub := strings.ToLower(s.Hub)
		children[hub] = append(children[hub], s)
	}
	for _, c := range children {
		sort.Slice(c, func(i, j int) bool { return c[i].Name < c[j].Name })
	}

	lines := []string{formatServer(root)}
	seen := map[*Server]bool{root: true}
	var walk func(parent *Server, indent string)
	walk = func(parent *Server, indent string) {
		kids := children[strings.ToLower(parent.Name)]
		for i, s := range kids {
			if seen[s] {
				continue
			}
			seen[s] = true
			lines = append(lines, indent+"|_ "+formatServer(s))
			next := indent + "|  "
			if i == len(kids)-1 {
				next = indent + "   "
			}
			walk(s, next)
		}
	}
	walk(root, "")
	return lines, nil
}

func formatServer(s *Server) string {
	return fmt.Sprintf("%s (%d) %s", s.Name, s.Hops, s.Description)
}
