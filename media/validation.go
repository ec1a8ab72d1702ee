package media

// ValidationResult is the outcome of vetting a local file.
type ValidationResult int

const (
	Valid ValidationResult = iota
	UnsupportedFormat
	FileNotFound
	FileTooLarge
	AccessDenied
	CorruptedFile
	SecurityRisk
)

func (v ValidationResult) String() string {
	switch v {
	case Valid:
		return "valid"
	case UnsupportedFormat:
		return "unsupported format"
	case FileNotFound:
		return "file not found"
	case FileTooLarge:
		return "file too large"
	case AccessDenied:
		return "access denied"
	case CorruptedFile:
		return "corrupted file"
	case SecurityRisk:
		return "security risk"
	default:
		return "unknown"
	}
}
