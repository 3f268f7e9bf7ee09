package v1alpha1

func StringToImportJobStatus(s string) ImportJobStatus {
	switch s {
	case string(ImportJobStatusPending):
		return ImportJobStatusPending
	case string(ImportJobStatusProcessing):
		return ImportJobStatusProcessing
	case string(ImportJobStatusCompleted):
		return ImportJobStatusCompleted
	case string(ImportJobStatusFailed):
		return ImportJobStatusFailed
	default:
		return ImportJobStatusPending
	}
}

// IsImportJobStatus reports whether s names a known status.
func IsImportJobStatus(s string) bool {
	return StringToImportJobStatus(s) == ImportJobStatus(s)
}
