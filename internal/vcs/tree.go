package vcs

import (
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// treeNode is one directory level of the index being written out.
type treeNode struct {
	files map[string]*index.Entry
	dirs  map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{
		files: make(map[string]*index.Entry),
		dirs:  make(map[string]*treeNode),
	}
}

func (n *treeNode) insert(parts []string, e *index.Entry) {
	if len(parts) == 1 {
		n.files[parts[0]] = e
		return
	}
	sub, ok := n.dirs[parts[0]]
	if !ok {
		sub = newTreeNode()
		n.dirs[parts[0]] = sub
	}
	sub.insert(parts[1:], e)
}

// write stores subtrees depth-first and then this tree, returning its hash.
func (n *treeNode) write(s storer.EncodedObjectStorer) (plumbing.Hash, error) {
	tree := &object.Tree{}

	for name, e := range n.files {
		tree.Entries = append(tree.Entries, object.TreeEntry{Name: name, Mode: e.Mode, Hash: e.Hash})
	}
	for name, sub := range n.dirs {
		hash, err := sub.write(s)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		tree.Entries = append(tree.Entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: hash})
	}

	// Git orders entries by name, comparing directories as if they ended in "/"
	sort.Slice(tree.Entries, func(i, j int) bool {
		return entrySortKey(tree.Entries[i]) < entrySortKey(tree.Entries[j])
	})

	obj := s.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}
	return s.SetEncodedObject(obj)
}

func entrySortKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}

// writeTree builds the tree hierarchy described by index entries.
func writeTree(s storer.EncodedObjectStorer, entries []*index.Entry) (plumbing.Hash, error) {
	root := newTreeNode()
	for _, e := range entries {
		root.insert(strings.Split(e.Name, "/"), e)
	}
	return root.write(s)
}
