package wbs

import (
	"strings"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/google/uuid"
)

const (
	defaultMemberName = "New Member"
	defaultMemberRole = "New Role"
)

func memberIndex(team []domain.TeamMember, id string) int {
	for i, m := range team {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// memberSubtree returns id and every member reporting to it, directly or
// indirectly.
func memberSubtree(team []domain.TeamMember, id string) map[string]bool {
	in := map[string]bool{id: true}
	for grew := true; grew; {
		grew = false
		for _, m := range team {
			if m.ParentID != nil && in[*m.ParentID] && !in[m.ID] {
				in[m.ID] = true
				grew = true
			}
		}
	}
	return in
}

// AddMember adds a member under parentID, or at the top when parentID is
// empty. It returns the new member id.
func AddMember(p *domain.Project, parentID, name, role string) (*domain.Project, string, error) {
	if parentID != "" && memberIndex(p.Team, parentID) < 0 {
		return nil, "", domain.NotFound("member", parentID)
	}
	m := domain.TeamMember{
		ID:       uuid.New().String(),
		ParentID: domain.StrPtr(parentID),
		Name:     domain.CoalesceStr(strings.TrimSpace(name), defaultMemberName),
		Role:     domain.CoalesceStr(strings.TrimSpace(role), defaultMemberRole),
	}
	next := p.Clone()
	next.Team = append(next.Team, m)
	return next, m.ID, nil
}

// UpdateMember changes name and role. Nil leaves a field unchanged.
func UpdateMember(p *domain.Project, id string, name, role *string) (*domain.Project, error) {
	i := memberIndex(p.Team, id)
	if i < 0 {
		return nil, domain.NotFound("member", id)
	}
	next := p.Clone()
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, domain.Invalid(domain.ErrEmptyName, "name", "member name cannot be empty")
		}
		next.Team[i].Name = n
	}
	if role != nil {
		next.Team[i].Role = strings.TrimSpace(*role)
	}
	return next, nil
}

// DeleteMember removes a member and everyone below it.
func DeleteMember(p *domain.Project, id string) (*domain.Project, error) {
	if memberIndex(p.Team, id) < 0 {
		return nil, domain.NotFound("member", id)
	}
	doomed := memberSubtree(p.Team, id)
	next := p.Clone()
	kept := next.Team[:0]
	for _, m := range next.Team {
		if !doomed[m.ID] {
			kept = append(kept, m)
		}
	}
	next.Team = kept
	return next, nil
}

// MoveMember re-parents dragged under target. An empty target moves the
// member to the top level.
func MoveMember(p *domain.Project, draggedID, targetID string) (*domain.Project, error) {
	if draggedID == targetID {
		return nil, domain.Invalid(domain.ErrIllegalMove, "target", "cannot move a member onto itself")
	}
	i := memberIndex(p.Team, draggedID)
	if i < 0 {
		return nil, domain.NotFound("member", draggedID)
	}
	if targetID != "" {
		if memberIndex(p.Team, targetID) < 0 {
			return nil, domain.NotFound("member", targetID)
		}
		if memberSubtree(p.Team, draggedID)[targetID] {
			return nil, domain.Invalid(domain.ErrIllegalMove, "target", "Cannot move a member into its own descendant.")
		}
	}
	next := p.Clone()
	next.Team[i].ParentID = domain.StrPtr(targetID)
	return next, nil
}

// MemberNode is one org chart entry in display order.
type MemberNode struct {
	Member domain.TeamMember
	Depth  int
	IsLast bool
}

// WalkTeam lists the org chart in pre-order. Members whose manager is
// missing are shown at the top level.
func WalkTeam(team []domain.TeamMember) []MemberNode {
	children := map[string][]int{}
	var roots []int
	for i, m := range team {
		if m.ParentID == nil || memberIndex(team, *m.ParentID) < 0 {
			roots = append(roots, i)
			continue
		}
		children[*m.ParentID] = append(children[*m.ParentID], i)
	}

	out := make([]MemberNode, 0, len(team))
	seen := make(map[int]bool, len(team))
	var visit func(level []int, depth int)
	visit = func(level []int, depth int) {
		for n, i := range level {
			if seen[i] {
				continue
			}
			seen[i] = true
			out = append(out, MemberNode{Member: team[i], Depth: depth, IsLast: n == len(level)-1})
			visit(children[team[i].ID], depth+1)
		}
	}
	visit(roots, 0)
	return out
}
