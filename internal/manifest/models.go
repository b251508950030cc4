package manifest

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a whole sort batch.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusConfirming Status = "confirming"
	StatusCleaning   Status = "cleaning"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// ImageStatus represents the lifecycle of a single image within a batch.
type ImageStatus string

const (
	ImagePending     ImageStatus = "pending"
	ImageSorting     ImageStatus = "sorting"
	ImageSorted      ImageStatus = "sorted"
	ImageSkipped     ImageStatus = "skipped"
	ImageError       ImageStatus = "error"
	ImageCleaned     ImageStatus = "cleaned"
	ImageCleanFailed ImageStatus = "clean_failed"
)

var allStatuses = []Status{
	StatusInProgress,
	StatusConfirming,
	StatusCleaning,
	StatusCompleted,
	StatusAbandoned,
}

var allImageStatuses = []ImageStatus{
	ImagePending,
	ImageSorting,
	ImageSorted,
	ImageSkipped,
	ImageError,
	ImageCleaned,
	ImageCleanFailed,
}

var imageStatusSet = func() map[ImageStatus]struct{} {
	set := make(map[ImageStatus]struct{}, len(allImageStatuses))
	for _, status := range allImageStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseImageStatus converts a string into a known ImageStatus.
func ParseImageStatus(value string) (ImageStatus, bool) {
	normalized := ImageStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := imageStatusSet[normalized]
	return normalized, ok
}

// AllStatuses returns the ordered list of known batch statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// Terminal reports whether an image requires no further automatic processing.
// Anything other than pending/sorting is terminal.
func (s ImageStatus) Terminal() bool {
	return s != ImagePending && s != ImageSorting
}

// Active reports whether a batch still accepts sort work.
func (s Status) Active() bool {
	return s == StatusInProgress || s == StatusConfirming
}

// Image is one file discovered during a source scan.
//
// SourceHash is immutable after creation; it anchors every later integrity
// check. DestinationPath and DestinationHash are set only once the image is
// sorted, and SourceDeleted flips true only after a hash-verified cleanup
// delete.
type Image struct {
	Filename           string      `json:"filename"`
	SourceHash         string      `json:"sourceHash"`
	Status             ImageStatus `json:"status"`
	DestinationPath    *string     `json:"destinationPath"`
	DestinationHash    *string     `json:"destinationHash"`
	PatientRecordSaved bool        `json:"patientRecordSaved"`
	SourceDeleted      bool        `json:"sourceDeleted"`
	SortedAt           *time.Time  `json:"sortedAt"`
	SkipReason         string      `json:"skipReason,omitempty"`
}

// Manifest is a persisted snapshot of one source-folder sort batch.
type Manifest struct {
	ID          string    `json:"id"`
	SourcePath  string    `json:"sourcePath"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      Status    `json:"status"`
	TotalImages int       `json:"totalImages"`
	Images      []Image   `json:"images"`
}

// Image returns a pointer to the image with the given filename, or nil.
func (m *Manifest) Image(filename string) *Image {
	for i := range m.Images {
		if m.Images[i].Filename == filename {
			return &m.Images[i]
		}
	}
	return nil
}

// AllProcessed reports whether every image has reached a terminal status.
func (m *Manifest) AllProcessed() bool {
	for i := range m.Images {
		if !m.Images[i].Status.Terminal() {
			return false
		}
	}
	return true
}

// CountByStatus returns how many images currently hold the given status.
func (m *Manifest) CountByStatus(status ImageStatus) int {
	count := 0
	for i := range m.Images {
		if m.Images[i].Status == status {
			count++
		}
	}
	return count
}

// ImageUpdate is a partial update applied to a single manifest image. Nil
// pointer fields are left untouched; Status is always applied.
type ImageUpdate struct {
	Status             ImageStatus
	DestinationPath    *string
	DestinationHash    *string
	PatientRecordSaved *bool
	SourceDeleted      *bool
	SkipReason         *string
}
