package httpapi

import (
	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/wbs"
	"github.com/gofiber/fiber/v2"
)

type departmentRequest struct {
	Name string `json:"name"`
	// Weight defaults to domain.DefaultDepartmentWeight when omitted.
	Weight *float64 `json:"weight"`
}

type updateDepartmentRequest struct {
	Name   *string  `json:"name"`
	Weight *float64 `json:"weight"`
}

type memberRequest struct {
	ParentID string `json:"parentId"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type updateMemberRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

type uploadRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	// Content is base64 in JSON.
	Content []byte `json:"content"`
}

func (r uploadRequest) upload() wbs.Upload {
	return wbs.Upload{FileName: r.FileName, FileType: r.FileType, Content: r.Content}
}

func (s *Server) listDepartments(c *fiber.Ctx) error {
	depts, err := s.svc.Departments.List(c.UserContext(), projectKey(c))
	if err != nil {
		return writeError(c, err)
	}
	return success(c, fiber.Map{"departments": depts, "totalWeight": depts.TotalWeight()})
}

func (s *Server) addDepartment(c *fiber.Ctx) error {
	var req departmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	weight := domain.DefaultDepartmentWeight
	if req.Weight != nil {
		weight = *req.Weight
	}
	p, err := s.svc.Departments.Add(c.UserContext(), projectKey(c), req.Name, weight)
	if err != nil {
		return writeError(c, err)
	}
	return created(c, p)
}

// updateDepartment applies a weight change before a rename so both can be
// sent at once against the current name.
func (s *Server) updateDepartment(c *fiber.Ctx) error {
	var req updateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Name == nil && req.Weight == nil {
		return writeError(c, domain.Invalid(nil, "", "nothing to update"))
	}
	name := c.Params("name")
	var p *domain.Project
	var err error
	if req.Weight != nil {
		if p, err = s.svc.Departments.SetWeight(c.UserContext(), projectKey(c), name, *req.Weight); err != nil {
			return writeError(c, err)
		}
	}
	if req.Name != nil {
		if p, err = s.svc.Departments.Rename(c.UserContext(), projectKey(c), name, *req.Name); err != nil {
			return writeError(c, err)
		}
	}
	return success(c, p)
}

func (s *Server) removeDepartment(c *fiber.Ctx) error {
	p, err := s.svc.Departments.Remove(c.UserContext(), projectKey(c), c.Params("name"))
	if err != nil {
		return writeError(c, err)
	}
	return success(c, p)
}

func (s *Server) addMember(c *fiber.Ctx) error {
	var req memberRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, id, err := s.svc.Team.Add(c.UserContext(), projectKey(c), req.ParentID, req.Name, req.Role)
	if err != nil {
		return writeError(c, err)
	}
	return created(c, createdResponse{ID: id, Project: p})
}

func (s *Server) updateMember(c *fiber.Ctx) error {
	var req updateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := s.svc.Team.Update(c.UserContext(), projectKey(c), c.Params("mid"), req.Name, req.Role)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, p)
}

func (s *Server) removeMember(c *fiber.Ctx) error {
	p, err := s.svc.Team.Remove(c.UserContext(), projectKey(c), c.Params("mid"))
	if err != nil {
		return writeError(c, err)
	}
	return success(c, p)
}

func (s *Server) moveMember(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := s.svc.Team.Move(c.UserContext(), projectKey(c), c.Params("mid"), req.Target)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, p)
}

func (s *Server) addDeliverable(c *fiber.Ctx) error {
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, id, err := s.svc.Deliverables.Add(c.UserContext(), projectKey(c), c.Params("tid"), req.upload())
	if err != nil {
		return writeError(c, err)
	}
	return created(c, createdResponse{ID: id, Project: p})
}

func (s *Server) addDeliverableVersion(c *fiber.Ctx) error {
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, v, err := s.svc.Deliverables.AddVersion(c.UserContext(), projectKey(c), c.Params("tid"), c.Params("did"), req.upload())
	if err != nil {
		return writeError(c, err)
	}
	return created(c, fiber.Map{"version": v, "project": p})
}

func (s *Server) removeDeliverable(c *fiber.Ctx) error {
	p, err := s.svc.Deliverables.Remove(c.UserContext(), projectKey(c), c.Params("tid"), c.Params("did"))
	if err != nil {
		return writeError(c, err)
	}
	return success(c, p)
}
