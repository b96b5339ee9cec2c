// Package wbs is the work-breakdown engine: it derives positional ids,
// rolls dates and department progress up the task forest, and applies
// structural and ledger changes as copy-on-write transformations of a
// project snapshot.
package wbs

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/wbsctl/internal/domain"
)

// Forest is an index arena over a flat task sequence. Node i is tasks[i];
// Parent[i] is -1 for roots. Children keep input order.
type Forest struct {
	Parent   []int
	Children [][]int
	Roots    []int
	Warnings []domain.Warning

	first map[string]int
}

// BuildForest resolves parent references against the first task carrying
// each id. Tasks whose parent cannot be resolved, and tasks caught in a
// parent cycle, are promoted to roots after the regular roots so that
// every task appears exactly once.
func BuildForest(tasks []domain.Task) *Forest {
	n := len(tasks)
	f := &Forest{
		Parent:   make([]int, n),
		Children: make([][]int, n),
		first:    make(map[string]int, n),
	}

	for i := range tasks {
		id := tasks[i].ID
		if _, dup := f.first[id]; dup {
			f.warn(domain.WarnDuplicateID, id, "duplicate task id; children attach to the first occurrence")
			continue
		}
		f.first[id] = i
	}

	var promoted []int
	for i := range tasks {
		f.Parent[i] = -1
		if tasks[i].IsRoot() {
			f.Roots = append(f.Roots, i)
			continue
		}
		pid := tasks[i].ParentKey()
		j, ok := f.first[pid]
		if !ok || j == i {
			f.warn(domain.WarnOrphanPromoted, tasks[i].ID, fmt.Sprintf("parent %q not found; promoted to root", pid))
			promoted = append(promoted, i)
			continue
		}
		f.Parent[i] = j
	}
	for i := range tasks {
		if p := f.Parent[i]; p >= 0 {
			f.Children[p] = append(f.Children[p], i)
		}
	}

	reached := make([]bool, n)
	for _, r := range f.Roots {
		f.mark(r, reached)
	}
	for _, r := range promoted {
		f.mark(r, reached)
	}
	for i := range tasks {
		if reached[i] {
			continue
		}
		f.detach(i)
		f.warn(domain.WarnCycleBroken, tasks[i].ID, "parent chain forms a cycle; promoted to root")
		promoted = append(promoted, i)
		f.mark(i, reached)
	}

	sort.Ints(promoted)
	f.Roots = append(f.Roots, promoted...)
	return f
}

func (f *Forest) warn(kind domain.WarningKind, ref, detail string) {
	f.Warnings = append(f.Warnings, domain.Warning{Kind: kind, Ref: ref, Detail: detail})
}

func (f *Forest) mark(i int, reached []bool) {
	stack := []int{i}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[top] {
			continue
		}
		reached[top] = true
		stack = append(stack, f.Children[top]...)
	}
}

func (f *Forest) detach(i int) {
	p := f.Parent[i]
	if p < 0 {
		return
	}
	kids := f.Children[p]
	for k, c := range kids {
		if c == i {
			f.Children[p] = append(kids[:k:k], kids[k+1:]...)
			break
		}
	}
	f.Parent[i] = -1
}

// Len is the number of nodes in the arena.
func (f *Forest) Len() int { return len(f.Parent) }

// Index returns the node holding id, preferring the first occurrence.
func (f *Forest) Index(id string) (int, bool) {
	i, ok := f.first[id]
	return i, ok
}

// PreOrder lists nodes parent-first, siblings in input order.
func (f *Forest) PreOrder() []int {
	order := make([]int, 0, f.Len())
	var walk func(i int)
	walk = func(i int) {
		order = append(order, i)
		for _, c := range f.Children[i] {
			walk(c)
		}
	}
	for _, r := range f.Roots {
		walk(r)
	}
	return order
}

// BottomUp lists nodes so that every node comes after all of its
// descendants.
func (f *Forest) BottomUp() []int {
	order := f.PreOrder()
	for l, r := 0, len(order)-1; l < r; l, r = l+1, r-1 {
		order[l], order[r] = order[r], order[l]
	}
	return order
}

func (f *Forest) IsLeaf(i int) bool {
	return len(f.Children[i]) == 0
}

// Depth is 0 for roots.
func (f *Forest) Depth(i int) int {
	d := 0
	for p := f.Parent[i]; p >= 0; p = f.Parent[p] {
		d++
	}
	return d
}

// IsAncestor reports whether a lies on the parent chain of i.
func (f *Forest) IsAncestor(a, i int) bool {
	for p := f.Parent[i]; p >= 0; p = f.Parent[p] {
		if p == a {
			return true
		}
	}
	return false
}

// Subtree returns i and all of its descendants.
func (f *Forest) Subtree(i int) []int {
	out := []int{i}
	for k := 0; k < len(out); k++ {
		out = append(out, f.Children[out[k]]...)
	}
	return out
}
