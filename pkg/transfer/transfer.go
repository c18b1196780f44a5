package transfer

import (
	"bytes"
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/matzehuels/blueprint/pkg/document"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/repository"
)

// Result is the outcome of an import.
type Result struct {
	// ID identifies this import run in logs and API responses.
	ID string
	// ProjectVersion is the imported graph, as far as it could be built.
	ProjectVersion *model.ProjectVersion
	// Errors lists every recoverable problem, sorted and deduplicated.
	Errors []string
}

// Import parses data and imports the project version it describes.
//
// Import is best effort: unresolved references are left unset and reported
// in [Result.Errors]. It fails only when data is not a JSON object with a
// projectVersion object (code GENERIC_ERROR), when the repository cannot
// load reference data (STORAGE_ERROR) or when ctx is done (TIMEOUT).
func Import(ctx context.Context, repo repository.Repository, data []byte) (*Result, error) {
	return Read(ctx, repo, bytes.NewReader(data))
}

// Read is like [Import] but reads the document from r. Read does not
// close r.
func Read(ctx context.Context, repo repository.Repository, r io.Reader) (*Result, error) {
	doc, err := document.Read(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeGeneric, err, "parse import document")
	}
	return ImportDocument(ctx, repo, doc)
}

// ImportDocument imports an already parsed document.
//
// Codecs run in reference order: zones, the project version, devices (which
// reference zones), rule-graph nodes (which reference the version) and
// service instances (which reference devices).
func ImportDocument(ctx context.Context, repo repository.Repository, doc document.Object) (*Result, error) {
	rec, ok := doc.Object(KeyProjectVersion)
	if !ok {
		return nil, errors.New(errors.ErrCodeGeneric, "import document has no %q object", KeyProjectVersion)
	}

	s, err := NewSession(ctx, repo)
	if err != nil {
		return nil, err
	}

	stages := []func(){
		func() { importZones(ctx, s, doc) },
		func() { importProjectVersion(ctx, s, rec) },
		func() { importDeviceItems(ctx, s, doc) },
		func() { importCFNodes(ctx, s, doc) },
		func() { importServiceInstances(s, doc) },
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "import cancelled")
		}
		stage()
	}

	pv := s.version
	pv.Zones = s.zones.order
	pv.Devices = s.devices.order
	pv.CFNodes = s.cfnodes.order
	pv.Services = s.services.order
	for _, z := range pv.Zones {
		z.ProjectVersion = pv
	}

	return &Result{
		ID:             uuid.NewString(),
		ProjectVersion: pv,
		Errors:         s.Errors(),
	}, nil
}

// Export builds the exchange document for pv. Entities without a persisted
// ID are numbered so that every reference inside the document resolves.
func Export(pv *model.ProjectVersion) document.Object {
	x := newExporter()
	exportZones(x, pv.Zones)
	exportProjectVersion(x, pv)
	exportDeviceItems(x, pv.Devices)
	exportCFNodes(x, pv.CFNodes)
	exportServiceInstances(x, pv.Services)
	return x.doc
}

// Write encodes the exchange document for pv to w as indented JSON.
func Write(pv *model.ProjectVersion, w io.Writer) error {
	return document.Write(Export(pv), w)
}

// Marshal returns the exchange document for pv as indented JSON.
func Marshal(pv *model.ProjectVersion) ([]byte, error) {
	return document.Marshal(Export(pv))
}
