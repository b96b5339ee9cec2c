package wbs

import (
	"github.com/alexanderramin/wbsctl/internal/domain"
)

// Recompute runs the full derivation: positional ids, then date roll-up,
// then progress roll-up, over a single arena. It is total and idempotent.
func Recompute(tasks []domain.Task, departments domain.Departments) ([]domain.Task, []domain.Warning) {
	out, warnings, _ := recompute(tasks, departments)
	return out, warnings
}

func recompute(tasks []domain.Task, departments domain.Departments) ([]domain.Task, []domain.Warning, []int) {
	f := BuildForest(tasks)
	out, nf, moved := renumber(f, tasks)
	rollupDates(nf, out)
	rollupProgress(nf, out, departments)
	return out, f.Warnings, moved
}

// Refresh recomputes p's task forest in place and returns any integrity
// warnings raised while doing so.
func Refresh(p *domain.Project) []domain.Warning {
	var warnings []domain.Warning
	p.Tasks, warnings = Recompute(p.Tasks, p.Departments)
	return warnings
}

// Node is a task with its position in the forest, as produced by Walk.
type Node struct {
	Task   domain.Task
	Depth  int
	IsLeaf bool
	IsLast bool
}

// Walk lists tasks in pre-order with depth and sibling information for
// rendering and export.
func Walk(tasks []domain.Task) []Node {
	f := BuildForest(tasks)
	nodes := make([]Node, 0, len(tasks))
	for _, i := range f.PreOrder() {
		siblings := f.Roots
		if p := f.Parent[i]; p >= 0 {
			siblings = f.Children[p]
		}
		nodes = append(nodes, Node{
			Task:   tasks[i],
			Depth:  f.Depth(i),
			IsLeaf: f.IsLeaf(i),
			IsLast: siblings[len(siblings)-1] == i,
		})
	}
	return nodes
}

// TopLevel returns the root tasks in order.
func TopLevel(tasks []domain.Task) []domain.Task {
	f := BuildForest(tasks)
	out := make([]domain.Task, 0, len(f.Roots))
	for _, r := range f.Roots {
		out = append(out, tasks[r])
	}
	return out
}
