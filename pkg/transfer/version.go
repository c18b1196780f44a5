package transfer

import (
	"context"

	"github.com/matzehuels/blueprint/pkg/document"
	"github.com/matzehuels/blueprint/pkg/model"
)

// exportProjectVersion writes the scalar fields of pv and the natural keys
// of its project and last-update user under projectVersion.
func exportProjectVersion(x *exporter, pv *model.ProjectVersion) {
	rec := document.Object{}
	rec.PutInt(KeyID, pv.ID)
	rec.PutString(KeyName, pv.Name)
	rec.PutString(KeyNotes, pv.Notes)
	rec.PutString(KeyUID, pv.UID)
	rec.PutBool(KeyLocked, pv.Locked)
	rec.PutTimestamp(KeyLastUpdate, pv.LastUpdate)

	if pv.Project != nil {
		rec.PutString(KeyProjectName, pv.Project.Name)
		rec.PutString(KeyCompanyName, pv.Project.CompanyName())
	}
	if pv.LastUpdateUser != nil {
		rec.PutString(KeyLastUpdateUserEmail, pv.LastUpdateUser.Email)
	}
	x.doc.Put(KeyProjectVersion, rec)
}

// importProjectVersion builds the session's project version from rec. A
// direct project reference in _importProjectId_ takes precedence over the
// project's natural key.
func importProjectVersion(ctx context.Context, s *Session, rec document.Object) {
	pv := &model.ProjectVersion{
		Name:       rec.String(KeyName),
		Notes:      rec.String(KeyNotes),
		UID:        rec.String(KeyUID),
		Locked:     rec.Bool(KeyLocked),
		LastUpdate: rec.Timestamp(KeyLastUpdate),
	}

	if id, ok := rec.Int(KeyImportProjectID); ok {
		pv.Project = s.FindProject(ctx, id)
	} else if rec.Has(KeyProjectName) {
		pv.Project = s.LookupProject(ctx, rec.String(KeyProjectName), rec.String(KeyCompanyName))
	}
	pv.LastUpdateUser = s.LookupUser(ctx, rec.String(KeyLastUpdateUserEmail))

	s.version = pv
}
