package domain

import "time"

// Deliverable groups the uploaded versions of one work product of a task.
type Deliverable struct {
	ID       string               `json:"id" yaml:"id"`
	Name     string               `json:"name" yaml:"name"`
	Versions []DeliverableVersion `json:"versions" yaml:"versions"`
}

// DeliverableVersion is one uploaded revision. Content is an opaque payload
// and is encoded as base64 in JSON documents.
type DeliverableVersion struct {
	Version    int       `json:"version" yaml:"version"`
	FileName   string    `json:"fileName" yaml:"fileName"`
	FileType   string    `json:"fileType" yaml:"fileType"`
	FileSize   int64     `json:"fileSize" yaml:"fileSize"`
	UploadDate time.Time `json:"uploadDate" yaml:"uploadDate"`
	Content    []byte    `json:"base64Content" yaml:"-"`
}

// Latest returns the highest-numbered version, if any.
func (d *Deliverable) Latest() (DeliverableVersion, bool) {
	var best DeliverableVersion
	found := false
	for _, v := range d.Versions {
		if !found || v.Version > best.Version {
			best = v
			found = true
		}
	}
	return best, found
}

// NextVersion is one past the highest existing version number.
func (d *Deliverable) NextVersion() int {
	latest, ok := d.Latest()
	if !ok {
		return 1
	}
	return latest.Version + 1
}

func (d Deliverable) Clone() Deliverable {
	c := d
	c.Versions = make([]DeliverableVersion, len(d.Versions))
	for i, v := range d.Versions {
		c.Versions[i] = v
		c.Versions[i].Content = append([]byte(nil), v.Content...)
	}
	return c
}
