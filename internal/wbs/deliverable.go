package wbs

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/google/uuid"
)

// Upload is a file attached to a task. Content is stored as given.
type Upload struct {
	FileName   string
	FileType   string
	Content    []byte
	UploadedAt time.Time
}

func (u Upload) version(n int) (domain.DeliverableVersion, error) {
	name := strings.TrimSpace(u.FileName)
	if name == "" {
		return domain.DeliverableVersion{}, domain.Invalid(domain.ErrEmptyName, "fileName", "file name cannot be empty")
	}
	return domain.DeliverableVersion{
		Version:    n,
		FileName:   name,
		FileType:   u.FileType,
		FileSize:   int64(len(u.Content)),
		UploadDate: u.UploadedAt.UTC(),
		Content:    append([]byte(nil), u.Content...),
	}, nil
}

func locateTask(p *domain.Project, taskID string) (int, error) {
	ti, ok := BuildForest(p.Tasks).Index(taskID)
	if !ok {
		return -1, domain.NotFound("task", taskID)
	}
	return ti, nil
}

func locateDeliverable(p *domain.Project, taskID, deliverableID string) (int, int, error) {
	ti, err := locateTask(p, taskID)
	if err != nil {
		return -1, -1, err
	}
	for di, d := range p.Tasks[ti].Deliverables {
		if d.ID == deliverableID {
			return ti, di, nil
		}
	}
	return ti, -1, domain.NotFound("deliverable", deliverableID)
}

// AddDeliverable creates a deliverable named after the uploaded file and
// stores the upload as version 1.
func AddDeliverable(p *domain.Project, taskID string, up Upload) (*domain.Project, string, error) {
	ti, err := locateTask(p, taskID)
	if err != nil {
		return nil, "", err
	}
	v, err := up.version(1)
	if err != nil {
		return nil, "", err
	}
	d := domain.Deliverable{
		ID:       uuid.New().String(),
		Name:     strings.TrimSuffix(v.FileName, filepath.Ext(v.FileName)),
		Versions: []domain.DeliverableVersion{v},
	}
	next := p.Clone()
	next.Tasks[ti].Deliverables = append(next.Tasks[ti].Deliverables, d)
	return next, d.ID, nil
}

// AddDeliverableVersion appends the upload as the next version number.
func AddDeliverableVersion(p *domain.Project, taskID, deliverableID string, up Upload) (*domain.Project, int, error) {
	ti, di, err := locateDeliverable(p, taskID, deliverableID)
	if err != nil {
		return nil, 0, err
	}
	next := p.Clone()
	d := &next.Tasks[ti].Deliverables[di]
	v, err := up.version(d.NextVersion())
	if err != nil {
		return nil, 0, err
	}
	d.Versions = append(d.Versions, v)
	return next, v.Version, nil
}

// RemoveDeliverable deletes a deliverable with all of its versions.
func RemoveDeliverable(p *domain.Project, taskID, deliverableID string) (*domain.Project, error) {
	ti, di, err := locateDeliverable(p, taskID, deliverableID)
	if err != nil {
		return nil, err
	}
	next := p.Clone()
	ds := next.Tasks[ti].Deliverables
	next.Tasks[ti].Deliverables = append(ds[:di:di], ds[di+1:]...)
	return next, nil
}
