package classify

// Category buckets an error by the tool or subsystem that produced it.
type Category string

const (
	CategoryLinting        Category = "linting"
	CategoryTypeScript     Category = "typescript"
	CategoryBuild          Category = "build"
	CategoryAuthentication Category = "authentication"
	CategoryDependency     Category = "dependency"
	CategoryUnknown        Category = "unknown"
)

// Severity grades how urgently a failure needs attention.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityMinor    Severity = "minor"
)

// Classification is the result of analyzing one error.
type Classification struct {
	Category       Category
	Severity       Severity
	Fixable        bool
	Description    string
	SuggestedFixes []string
	Fingerprint    string
}
