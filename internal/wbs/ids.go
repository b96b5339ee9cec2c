package wbs

import (
	"strconv"

	"github.com/alexanderramin/wbsctl/internal/domain"
)

// AssignIDs returns the tasks in pre-order with dotted positional ids
// ("1", "1.2", "1.2.1") and parent references rewritten to match. The
// input is not modified.
func AssignIDs(tasks []domain.Task) []domain.Task {
	out, _, _ := renumber(BuildForest(tasks), tasks)
	return out
}

// renumber walks f in pre-order and emits fresh copies of tasks with new
// ids. It also returns the forest over the emitted slice and, for each
// input index, where that task ended up.
func renumber(f *Forest, tasks []domain.Task) ([]domain.Task, *Forest, []int) {
	n := len(tasks)
	out := make([]domain.Task, 0, n)
	moved := make([]int, n)
	nf := &Forest{
		Parent:   make([]int, n),
		Children: make([][]int, n),
		first:    make(map[string]int, n),
	}

	var walk func(i, parentAt int, parentID string, pos int)
	walk = func(i, parentAt int, parentID string, pos int) {
		t := tasks[i].Clone()
		id := strconv.Itoa(pos)
		if parentAt >= 0 {
			id = parentID + "." + id
		}
		t.ID = id
		t.ParentID = nil
		if parentAt >= 0 {
			pid := parentID
			t.ParentID = &pid
		}

		at := len(out)
		out = append(out, t)
		moved[i] = at
		nf.first[id] = at
		nf.Parent[at] = parentAt
		if parentAt < 0 {
			nf.Roots = append(nf.Roots, at)
		} else {
			nf.Children[parentAt] = append(nf.Children[parentAt], at)
		}

		for k, c := range f.Children[i] {
			walk(c, at, id, k+1)
		}
	}
	for k, r := range f.Roots {
		walk(r, -1, "", k+1)
	}
	return out, nf, moved
}
