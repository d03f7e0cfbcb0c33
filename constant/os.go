package constant

// Values of runtime.GOOS the application handles specially.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	Android = "android"
)
