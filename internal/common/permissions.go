package common

// File permission constants shared across the application
const (
	// FilePermissionSecure is used for sensitive files (config, stored credentials)
	FilePermissionSecure = 0600

	// FilePermissionNormal is used for generated artifacts (object scripts, packages)
	FilePermissionNormal = 0644

	// DirPermissionSecure is used for directories containing sensitive files
	DirPermissionSecure = 0700

	// DirPermissionNormal is used for run directories and their subfolders
	DirPermissionNormal = 0755
)
