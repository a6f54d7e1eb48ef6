package sql

import (
	"time"

	"github.com/PaperMC/bibliothek/domain"
	"github.com/PaperMC/bibliothek/store"
)

type projectRecord struct {
	ID           string `gorm:"primaryKey;size:36"`
	Name         string `gorm:"size:255;not null;uniqueIndex"`
	FriendlyName string `gorm:"size:255"`
}

func (projectRecord) TableName() string { return store.ProjectsCollection }

type versionGroupRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	ProjectID string `gorm:"size:36;not null;uniqueIndex:idx_version_groups_project_name,priority:1"`
	Name      string `gorm:"size:255;not null;uniqueIndex:idx_version_groups_project_name,priority:2"`
	Time      *time.Time
}

func (versionGroupRecord) TableName() string { return store.VersionGroupsCollection }

type versionRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	ProjectID string `gorm:"size:36;not null;uniqueIndex:idx_versions_project_name,priority:1"`
	GroupID   string `gorm:"size:36;not null;index"`
	Name      string `gorm:"size:255;not null;uniqueIndex:idx_versions_project_name,priority:2"`
	Time      *time.Time
}

func (versionRecord) TableName() string { return store.VersionsCollection }

// buildRecord IDs are UUIDv7 strings, so ordering by ID is insertion order.
type buildRecord struct {
	ID        string           `gorm:"primaryKey;size:36"`
	ProjectID string           `gorm:"size:36;not null;index"`
	VersionID string           `gorm:"size:36;not null;index:idx_builds_version_number,priority:1"`
	Number    int              `gorm:"not null;index:idx_builds_version_number,priority:2"`
	Time      time.Time        `gorm:"not null"`
	Promoted  bool             `gorm:"not null;default:false"`
	Channel   string           `gorm:"size:32;not null;default:default"`
	Changes   []changeRecord   `gorm:"foreignKey:BuildID;constraint:OnDelete:CASCADE"`
	Downloads []downloadRecord `gorm:"foreignKey:BuildID;constraint:OnDelete:CASCADE"`
}

func (buildRecord) TableName() string { return store.BuildsCollection }

type changeRecord struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	BuildID  string `gorm:"size:36;not null;index"`
	Position int    `gorm:"not null"`
	Commit   string `gorm:"size:64;not null"`
	Summary  string `gorm:"type:text"`
	Message  string `gorm:"type:text"`
}

func (changeRecord) TableName() string { return "build_changes" }

type downloadRecord struct {
	BuildID string `gorm:"primaryKey;size:36"`
	Channel string `gorm:"primaryKey;size:255"`
	Name    string `gorm:"size:255;not null"`
	SHA256  string `gorm:"column:sha256;size:128;not null"`
}

func (downloadRecord) TableName() string { return "build_downloads" }

// models lists every record type in migration order.
func models() []interface{} {
	return []interface{}{
		&projectRecord{},
		&versionGroupRecord{},
		&versionRecord{},
		&buildRecord{},
		&changeRecord{},
		&downloadRecord{},
	}
}

func (r *projectRecord) toDomain() *domain.Project {
	return &domain.Project{ID: r.ID, Name: r.Name, FriendlyName: r.FriendlyName}
}

func (r *versionGroupRecord) toDomain() *domain.VersionGroup {
	return &domain.VersionGroup{ID: r.ID, Project: r.ProjectID, Name: r.Name, Time: utc(r.Time)}
}

func (r *versionRecord) toDomain() *domain.Version {
	return &domain.Version{ID: r.ID, Project: r.ProjectID, Group: r.GroupID, Name: r.Name, Time: utc(r.Time)}
}

func newBuildRecord(id string, b *domain.Build) *buildRecord {
	rec := &buildRecord{
		ID:        id,
		ProjectID: b.Project,
		VersionID: b.Version,
		Number:    b.Number,
		Time:      b.Time.UTC(),
		Promoted:  b.Promoted,
		Channel:   string(b.Channel),
	}
	if rec.Channel == "" {
		rec.Channel = string(domain.BuildChannelDefault)
	}
	for i, c := range b.Changes {
		rec.Changes = append(rec.Changes, changeRecord{
			BuildID:  id,
			Position: i,
			Commit:   c.Commit,
			Summary:  c.Summary,
			Message:  c.Message,
		})
	}
	for key, d := range b.Downloads {
		rec.Downloads = append(rec.Downloads, downloadRecord{
			BuildID: id,
			Channel: key,
			Name:    d.Name,
			SHA256:  d.SHA256,
		})
	}
	return rec
}

// toDomain expects Changes to be loaded in position order.
func (r *buildRecord) toDomain() *domain.Build {
	b := &domain.Build{
		ID:        r.ID,
		Project:   r.ProjectID,
		Version:   r.VersionID,
		Number:    r.Number,
		Time:      r.Time.UTC(),
		Changes:   make([]domain.Change, 0, len(r.Changes)),
		Downloads: make(map[string]domain.Download, len(r.Downloads)),
		Promoted:  r.Promoted,
		Channel:   domain.BuildChannel(r.Channel),
	}
	for _, c := range r.Changes {
		b.Changes = append(b.Changes, domain.Change{Commit: c.Commit, Summary: c.Summary, Message: c.Message})
	}
	for _, d := range r.Downloads {
		b.Downloads[d.Channel] = domain.Download{Name: d.Name, SHA256: d.SHA256}
	}
	return b
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
