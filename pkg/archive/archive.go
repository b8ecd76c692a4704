// Package archive keeps a history of synthesized designs.
//
// A [Record] captures the options of one synthesis run, the resulting shape
// and its rendered artifacts under a UUID build ID. Three [Store] backends
// are provided:
//   - [MemoryStore]: in-process, for tests and the HTTP server without a database
//   - [FileStore]: one JSON file per record, for the CLI
//   - [MongoStore]: a MongoDB collection, for shared deployments
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/prefixtower/pkg/pipeline"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Record is one archived synthesis run.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Width     int    `json:"width" bson:"width"`
	Rank      string `json:"rank" bson:"rank"`
	Recipe    string `json:"recipe,omitempty" bson:"recipe,omitempty"`
	Optimize  bool   `json:"optimize,omitempty" bson:"optimize,omitempty"`
	Partition bool   `json:"partition,omitempty" bson:"partition,omitempty"`
	Language  string `json:"language,omitempty" bson:"language,omitempty"`
	// Forest marks a full adder of one tree per output bit; Rank is then
	// the rank of the widest tree.
	Forest bool `json:"forest,omitempty" bson:"forest,omitempty"`

	Height int   `json:"height" bson:"height"`
	Depths []int `json:"depths" bson:"depths"`
	Blocks int   `json:"blocks" bson:"blocks"`
	Nodes  int   `json:"nodes" bson:"nodes"`

	Artifacts map[string][]byte `json:"artifacts,omitempty" bson:"artifacts,omitempty"`
}

// Store is the interface for archive backends.
type Store interface {
	// Save stores rec, assigning an ID and timestamp when they are unset.
	Save(ctx context.Context, rec *Record) error

	// Load returns the record with the given ID, or ErrNotFound.
	Load(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first. A limit of 0 or
	// less returns every record.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

// NewRecord describes a finished pipeline run.
func NewRecord(opts pipeline.Options, res *pipeline.Result) *Record {
	rec := &Record{
		Width:     opts.Width,
		Recipe:    opts.Recipe,
		Optimize:  opts.Optimize,
		Partition: opts.Partition,
		Language:  opts.Language,
		Forest:    opts.Forest,
		Height:    res.Height,
		Depths:    res.Depths,
		Blocks:    res.Blocks,
		Nodes:     res.Stats.NodeCount,
		Artifacts: res.Artifacts,
	}
	if res.Rank != nil {
		rec.Rank = res.Rank.String()
	}
	return rec
}

// prepare assigns the build ID and creation time.
func prepare(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}

// validID rejects IDs that are not UUIDs so file names stay confined.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
