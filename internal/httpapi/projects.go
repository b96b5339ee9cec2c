package httpapi

import (
	"bytes"
	"fmt"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/exporter"
	"github.com/alexanderramin/wbsctl/internal/service"
	"github.com/gofiber/fiber/v2"
)

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Period      string `json:"period"`
	Type        string `json:"type"`
	Goal        string `json:"goal"`
}

type updateDetailsRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Period      *string `json:"period"`
	Type        *string `json:"type"`
	Goal        *string `json:"goal"`
}

type importResponse struct {
	Project            *domain.Project  `json:"project"`
	TaskCount          int              `json:"taskCount"`
	DepartmentsCreated int              `json:"departmentsCreated"`
	Warnings           []domain.Warning `json:"warnings"`
}

func newImportResponse(res *service.ImportResult) importResponse {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []domain.Warning{}
	}
	return importResponse{
		Project:            res.Project,
		TaskCount:          res.TaskCount,
		DepartmentsCreated: res.DepartmentsCreated,
		Warnings:           warnings,
	}
}

// projectKey addresses the :pid project of the calling principal.
func projectKey(c *fiber.Ctx) domain.ProjectKey {
	return domain.ProjectKey{Owner: principalFrom(c).ID, ProjectID: c.Params("pid")}
}

func (s *Server) listProjects(c *fiber.Ctx) error {
	projects, err := s.svc.Projects.List(c.UserContext(), principalFrom(c).ID, c.Query("q"))
	if err != nil {
		return writeError(c, err)
	}
	return success(c, projects)
}

func (s *Server) createProject(c *fiber.Ctx) error {
	var req createProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := s.svc.Projects.Create(c.UserContext(), principalFrom(c).ID, service.ProjectDraft{
		Name:        req.Name,
		Description: req.Description,
		Period:      req.Period,
		Type:        req.Type,
		Goal:        req.Goal,
	})
	if err != nil {
		return writeError(c, err)
	}
	return created(c, p)
}

func (s *Server) getProject(c *fiber.Ctx) error {
	p, err := s.svc.Projects.Get(c.UserContext(), projectKey(c))
	if err != nil {
		return writeError(c, err)
	}
	return success(c, p)
}

func (s *Server) updateDetails(c *fiber.Ctx) error {
	var req updateDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := s.svc.Projects.UpdateDetails(c.UserContext(), projectKey(c), service.DetailsPatch{
		Name:        req.Name,
		Description: req.Description,
		Period:      req.Period,
		Type:        req.Type,
		Goal:        req.Goal,
	})
	if err != nil {
		return writeError(c, err)
	}
	return success(c, p)
}

func (s *Server) updateCharter(c *fiber.Ctx) error {
	var charter domain.Charter
	if err := c.BodyParser(&charter); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := s.svc.Projects.UpdateCharter(c.UserContext(), projectKey(c), charter)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, p)
}

func (s *Server) deleteProject(c *fiber.Ctx) error {
	if err := s.svc.Projects.Delete(c.UserContext(), projectKey(c)); err != nil {
		return writeError(c, err)
	}
	return noContent(c)
}

func (s *Server) summary(c *fiber.Ctx) error {
	sum, err := s.svc.Summary.Summary(c.UserContext(), projectKey(c), c.Query("baseline"))
	if err != nil {
		return writeError(c, err)
	}
	return success(c, fiber.Map{"summary": sum, "attention": sum.Attention})
}

var contentTypes = map[domain.Format]string{
	domain.FormatCSV:  "text/csv; charset=utf-8",
	domain.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	domain.FormatJSON: fiber.MIMEApplicationJSONCharsetUTF8,
	domain.FormatYAML: "application/yaml",
}

func (s *Server) export(c *fiber.Ctx) error {
	format, err := domain.ParseFormat(c.Query("format", string(domain.FormatCSV)))
	if err != nil {
		return writeError(c, err)
	}
	opts := exporter.Options{
		Baseline:    c.Query("baseline"),
		Indent:      c.QueryBool("indent"),
		OmitDerived: !c.QueryBool("derived", true),
	}
	var buf bytes.Buffer
	if err := s.svc.Export.Export(c.UserContext(), projectKey(c), format, &buf, opts); err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentTypes[format])
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="wbs.%s"`, format))
	return c.Send(buf.Bytes())
}

func (s *Server) importTable(c *fiber.Ctx) error {
	format, err := domain.ParseFormat(c.Query("format", string(domain.FormatCSV)))
	if err != nil {
		return writeError(c, err)
	}
	res, err := s.svc.Import.ImportTable(c.UserContext(), projectKey(c), bytes.NewReader(c.Body()), format)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, newImportResponse(res))
}

func (s *Server) importDocument(c *fiber.Ctx) error {
	res, err := s.svc.Import.ImportDocument(c.UserContext(), principalFrom(c).ID, bytes.NewReader(c.Body()))
	if err != nil {
		return writeError(c, err)
	}
	return created(c, newImportResponse(res))
}
