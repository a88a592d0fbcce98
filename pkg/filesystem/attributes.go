package filesystem

// Visibility is the abstract, backend-independent access policy of a file.
type Visibility string

const (
	// Public files are readable by anyone.
	Public Visibility = "public"

	// Private files are only readable by the owner.
	Private Visibility = "private"
)

// StorageAttributes describes a single entry produced by an adapter.
//
// There are exactly two implementations: *FileAttributes and
// *DirectoryAttributes. Use a type switch to tell them apart:
//
//	switch attr := entry.(type) {
//	case *filesystem.FileAttributes:
//	    fmt.Println(attr.Path, *attr.FileSize)
//	case *filesystem.DirectoryAttributes:
//	    fmt.Println(attr.Path + "/")
//	}
type StorageAttributes interface {
	// Location returns the logical path of the entry (never prefixed).
	Location() string

	// IsFile reports whether the entry is a file.
	IsFile() bool

	// IsDir reports whether the entry is a directory.
	IsDir() bool

	sealed()
}

// FileAttributes holds the attributes of a file. Optional attributes the
// backend did not report are left nil or empty.
type FileAttributes struct {
	Path string

	// FileSize in bytes.
	FileSize *int64

	Visibility Visibility

	// LastModified in unix seconds.
	LastModified *int64

	MimeType string

	// ExtraMetadata holds backend-specific fields (e.g. ETag, StorageClass).
	// Only fields actually present on the backend response are set.
	ExtraMetadata map[string]any
}

func (f *FileAttributes) Location() string { return f.Path }
func (f *FileAttributes) IsFile() bool     { return true }
func (f *FileAttributes) IsDir() bool      { return false }
func (f *FileAttributes) sealed()          {}

// DirectoryAttributes holds the attributes of a directory.
type DirectoryAttributes struct {
	Path string
}

func (d *DirectoryAttributes) Location() string { return d.Path }
func (d *DirectoryAttributes) IsFile() bool     { return false }
func (d *DirectoryAttributes) IsDir() bool      { return true }
func (d *DirectoryAttributes) sealed()          {}
