package mongo

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/PaperMC/bibliothek/domain"
)

type projectDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Name         string        `bson:"name"`
	FriendlyName string        `bson:"friendlyName"`
}

type versionGroupDocument struct {
	ID      bson.ObjectID `bson:"_id,omitempty"`
	Project bson.ObjectID `bson:"project"`
	Name    string        `bson:"name"`
	Time    *time.Time    `bson:"time,omitempty"`
}

type versionDocument struct {
	ID      bson.ObjectID `bson:"_id,omitempty"`
	Project bson.ObjectID `bson:"project"`
	Group   bson.ObjectID `bson:"group"`
	Name    string        `bson:"name"`
	Time    *time.Time    `bson:"time,omitempty"`
}

type changeDocument struct {
	Commit  string `bson:"commit"`
	Summary string `bson:"summary"`
	Message string `bson:"message"`
}

type downloadDocument struct {
	Name   string `bson:"name"`
	SHA256 string `bson:"sha256"`
}

// buildDocument matches the documents written by earlier ingestion tools:
// promoted and channel may be absent. The channel is stored by its enum
// name, DEFAULT or EXPERIMENTAL.
type buildDocument struct {
	ID        bson.ObjectID               `bson:"_id,omitempty"`
	Project   bson.ObjectID               `bson:"project"`
	Version   bson.ObjectID               `bson:"version"`
	Number    int                         `bson:"number"`
	Time      time.Time                   `bson:"time"`
	Changes   []changeDocument            `bson:"changes"`
	Downloads map[string]downloadDocument `bson:"downloads"`
	Promoted  bool                        `bson:"promoted"`
	Channel   string                      `bson:"channel,omitempty"`
}

func (d *projectDocument) toDomain() *domain.Project {
	return &domain.Project{ID: d.ID.Hex(), Name: d.Name, FriendlyName: d.FriendlyName}
}

func (d *versionGroupDocument) toDomain() *domain.VersionGroup {
	return &domain.VersionGroup{ID: d.ID.Hex(), Project: d.Project.Hex(), Name: d.Name, Time: utc(d.Time)}
}

func (d *versionDocument) toDomain() *domain.Version {
	return &domain.Version{
		ID:      d.ID.Hex(),
		Project: d.Project.Hex(),
		Group:   d.Group.Hex(),
		Name:    d.Name,
		Time:    utc(d.Time),
	}
}

func (d *buildDocument) toDomain() *domain.Build {
	b := &domain.Build{
		ID:        d.ID.Hex(),
		Project:   d.Project.Hex(),
		Version:   d.Version.Hex(),
		Number:    d.Number,
		Time:      d.Time.UTC(),
		Changes:   make([]domain.Change, 0, len(d.Changes)),
		Downloads: make(map[string]domain.Download, len(d.Downloads)),
		Promoted:  d.Promoted,
		Channel:   domain.BuildChannel(strings.ToLower(d.Channel)),
	}
	if b.Channel == "" {
		b.Channel = domain.BuildChannelDefault
	}
	for _, c := range d.Changes {
		b.Changes = append(b.Changes, domain.Change(c))
	}
	for key, dl := range d.Downloads {
		b.Downloads[key] = domain.Download(dl)
	}
	return b
}

func newBuildDocument(project, version bson.ObjectID, b *domain.Build) *buildDocument {
	d := &buildDocument{
		ID:        bson.NewObjectID(),
		Project:   project,
		Version:   version,
		Number:    b.Number,
		Time:      b.Time.UTC(),
		Changes:   make([]changeDocument, 0, len(b.Changes)),
		Downloads: make(map[string]downloadDocument, len(b.Downloads)),
		Promoted:  b.Promoted,
		Channel:   strings.ToUpper(string(b.Channel)),
	}
	for _, c := range b.Changes {
		d.Changes = append(d.Changes, changeDocument(c))
	}
	for key, dl := range b.Downloads {
		d.Downloads[key] = downloadDocument(dl)
	}
	return d
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
