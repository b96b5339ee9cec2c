package httpapi

import (
	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/scheduler"
	"github.com/alexanderramin/wbsctl/internal/wbs"
	"github.com/gofiber/fiber/v2"
)

type addTaskRequest struct {
	// ParentID adds the task as the first child of that task.
	ParentID        string `json:"parentId"`
	Name            string `json:"name"`
	Assignee        string `json:"assignee"`
	DeliverableName string `json:"deliverableName"`
	Notes           string `json:"notes"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	Status          string `json:"status"`
}

type updateTaskRequest struct {
	Name               *string        `json:"name"`
	Assignee           *string        `json:"assignee"`
	DeliverableName    *string        `json:"deliverableName"`
	Notes              *string        `json:"notes"`
	Status             *string        `json:"status"`
	StartDate          *string        `json:"startDate"`
	EndDate            *string        `json:"endDate"`
	DepartmentProgress map[string]int `json:"departmentProgress"`
	IsExpanded         *bool          `json:"isExpanded"`
}

type moveRequest struct {
	// Target is the id to drop onto; empty moves to the root end.
	Target string `json:"target"`
}

type taskRowResponse struct {
	Task    domain.Task           `json:"task"`
	Depth   int                   `json:"depth"`
	Leaf    bool                  `json:"leaf"`
	Metrics scheduler.TaskMetrics `json:"metrics"`
}

type createdResponse struct {
	ID      string          `json:"id"`
	Project *domain.Project `json:"project"`
}

func (s *Server) listTasks(c *fiber.Ctx) error {
	rows, err := s.svc.Tasks.List(c.UserContext(), projectKey(c), c.Query("baseline"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]taskRowResponse, len(rows))
	for i, r := range rows {
		out[i] = taskRowResponse{Task: r.Task, Depth: r.Depth, Leaf: r.IsLeaf, Metrics: r.Metrics}
	}
	return success(c, out)
}

func (s *Server) addTask(c *fiber.Ctx) error {
	var req addTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	draft := wbs.TaskDraft{
		Name:            req.Name,
		Assignee:        req.Assignee,
		DeliverableName: req.DeliverableName,
		Notes:           req.Notes,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Status:          domain.Status(req.Status),
	}

	var (
		p   *domain.Project
		id  string
		err error
	)
	if req.ParentID != "" {
		p, id, err = s.svc.Tasks.AddSub(c.UserContext(), projectKey(c), req.ParentID, draft)
	} else {
		p, id, err = s.svc.Tasks.Add(c.UserContext(), projectKey(c), draft)
	}
	if err != nil {
		return writeError(c, err)
	}
	return created(c, createdResponse{ID: id, Project: p})
}

func (s *Server) updateTask(c *fiber.Ctx) error {
	var req updateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	patch := wbs.TaskPatch{
		Name:               req.Name,
		Assignee:           req.Assignee,
		DeliverableName:    req.DeliverableName,
		Notes:              req.Notes,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		DepartmentProgress: req.DepartmentProgress,
		IsExpanded:         req.IsExpanded,
	}
	if req.Status != nil {
		st := domain.Status(*req.Status)
		patch.Status = &st
	}
	p, err := s.svc.Tasks.Update(c.UserContext(), projectKey(c), c.Params("tid"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, p)
}

func (s *Server) deleteTask(c *fiber.Ctx) error {
	p, err := s.svc.Tasks.Delete(c.UserContext(), projectKey(c), c.Params("tid"))
	if err != nil {
		return writeError(c, err)
	}
	return success(c, p)
}

func (s *Server) moveTask(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := s.svc.Tasks.Move(c.UserContext(), projectKey(c), c.Params("tid"), req.Target)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, p)
}

func (s *Server) toggleTask(c *fiber.Ctx) error {
	p, err := s.svc.Tasks.ToggleExpand(c.UserContext(), projectKey(c), c.Params("tid"))
	if err != nil {
		return writeError(c, err)
	}
	return success(c, p)
}
