package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// Format describes how a file's text is structured, which decides the
// classification strategy applied to it.
type Format uint8

const (
	// FormatCode is script-like source: string literals plus // and /* */ comments.
	FormatCode Format = iota
	// FormatMarkdown is structured text with fenced and indented code blocks.
	FormatMarkdown
	// FormatOther is plain text with no recognized sub-structure.
	FormatOther
)

func (f Format) String() string {
	switch f {
	case FormatCode:
		return "code"
	case FormatMarkdown:
		return "markdown"
	case FormatOther:
		return "other"
	}
	return "unknown"
}

// DetectFormat picks a Format from a file extension (with or without the dot).
func DetectFormat(ext string) Format {
	switch normalizeExt(ext) {
	case ".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs", ".mts", ".cts":
		return FormatCode
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatOther
	}
}

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Format  Format
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
