package sorting

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Destination is the computed target for one sorted image.
type Destination struct {
	Dir      string
	Filename string
}

// Path returns the full destination file path.
func (d Destination) Path() string {
	return filepath.Join(d.Dir, d.Filename)
}

// BuildDestinationPath maps sort metadata to its destination directory and
// filename. This mapping is the on-disk schema contract; it is deterministic
// and performs no I/O.
//
//	consent:    {root}/consent/{consentType}/{procedure}/{date}/{case}
//	no consent: {root}/no_consent/{procedure}/{date}/{case}
//	filename:   {case}_{imageType}_{angle}{ext}
//
// The extension is the lowercased extension of the original filename,
// defaulting to .jpg when the original has none.
func BuildDestinationPath(req Request, destinationRoot string) Destination {
	ext := strings.ToLower(filepath.Ext(req.OriginalFilename))
	if ext == "" {
		ext = ".jpg"
	}

	var dir string
	if req.ConsentStatus == ConsentGiven && req.ConsentType != "" {
		dir = filepath.Join(destinationRoot, "consent", string(req.ConsentType), req.ProcedureType, req.SurgeryDate, req.CaseNumber)
	} else {
		dir = filepath.Join(destinationRoot, "no_consent", req.ProcedureType, req.SurgeryDate, req.CaseNumber)
	}

	filename := fmt.Sprintf("%s_%s_%s%s", req.CaseNumber, req.ImageType, req.Angle, ext)
	return Destination{Dir: dir, Filename: filename}
}
