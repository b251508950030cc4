package sorting

import (
	"fmt"
	"strings"
	"time"

	"photosort/internal/faults"
)

// ConsentStatus records whether the patient consented to photo use.
type ConsentStatus string

const (
	ConsentNone  ConsentStatus = "no_consent"
	ConsentGiven ConsentStatus = "consent"
)

// ConsentType narrows what a consenting patient agreed to.
type ConsentType string

const (
	ConsentHIPAA       ConsentType = "hipaa"
	ConsentSocialMedia ConsentType = "social_media"
)

// Request carries the metadata for sorting one image.
type Request struct {
	CaseNumber    string
	ConsentStatus ConsentStatus
	// ConsentType is required iff ConsentStatus is ConsentGiven.
	ConsentType      ConsentType
	ProcedureType    string
	SurgeryDate      string // YYYY-MM-DD
	ImageType        string
	Angle            string
	OriginalFilename string
}

// PatientDetails optionally identifies the patient so a record can be created
// alongside the sort.
type PatientDetails struct {
	FirstName string
	LastName  string
	DOB       string
	Surgeon   string
}

// Validate checks required fields and field shapes.
func (r Request) Validate() error {
	missing := func(field string) error {
		return faults.Wrap(faults.ErrValidation, "sorting", "validate request", field+" is required", nil)
	}
	if strings.TrimSpace(r.CaseNumber) == "" {
		return missing("case number")
	}
	if strings.TrimSpace(r.ProcedureType) == "" {
		return missing("procedure type")
	}
	if strings.TrimSpace(r.ImageType) == "" {
		return missing("image type")
	}
	if strings.TrimSpace(r.Angle) == "" {
		return missing("angle")
	}
	if strings.TrimSpace(r.OriginalFilename) == "" {
		return missing("original filename")
	}

	switch r.ConsentStatus {
	case ConsentNone:
	case ConsentGiven:
		switch r.ConsentType {
		case ConsentHIPAA, ConsentSocialMedia:
		default:
			return faults.Wrap(faults.ErrValidation, "sorting", "validate request",
				fmt.Sprintf("consent type %q invalid for consenting patient", r.ConsentType), nil)
		}
	default:
		return faults.Wrap(faults.ErrValidation, "sorting", "validate request",
			fmt.Sprintf("consent status %q unknown", r.ConsentStatus), nil)
	}

	if _, err := time.Parse("2006-01-02", r.SurgeryDate); err != nil {
		return faults.Wrap(faults.ErrValidation, "sorting", "validate request",
			fmt.Sprintf("surgery date %q is not YYYY-MM-DD", r.SurgeryDate), nil)
	}
	return nil
}
