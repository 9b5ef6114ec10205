package errors

// Convenience constructors for common error patterns

// Config errors

func ConfigNotFound(path string) *RefGenError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *RefGenError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Exporter errors

// ExporterFailed reports a jsondoc invocation that exited non-zero. The
// captured (truncated) stderr travels in the context.
func ExporterFailed(module, diagnostic string, cause error) *RefGenError {
	return Wrap(cause, CategoryExporter, SeverityError, "exporter invocation failed").
		WithContext("module", module).
		WithContext("diagnostic", diagnostic)
}

// ExporterSpawnFailed reports an OS-level failure to start the exporter
// (missing binary, fork failure). Spawn failures may be transient.
func ExporterSpawnFailed(binary string, cause error) *RefGenError {
	return WrapRetryable(cause, CategoryExporter, SeverityError, "exporter could not be started").
		WithContext("binary", binary)
}

// OutputMissing reports an exporter run that exited zero without producing
// the expected JSON file.
func OutputMissing(path string) *RefGenError {
	return New(CategoryExporter, SeverityError, "exporter reported success but output file is missing").
		WithContext("path", path)
}

// Parse errors

func MalformedInput(path string, cause error) *RefGenError {
	return Wrap(cause, CategoryParse, SeverityError, "documentation JSON is not parseable").
		WithContext("path", path)
}

func InputNotFound(path string) *RefGenError {
	return New(CategoryFileSystem, SeverityError, "documentation JSON file does not exist").
		WithContext("path", path)
}

// Pipeline errors

// OutputDirError is the only fatal pipeline condition: without output
// directories no page can be written at all.
func OutputDirError(dir string, cause error) *RefGenError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "cannot create output directory").
		WithContext("dir", dir)
}

func PageWriteError(path string, cause error) *RefGenError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "cannot write generated page").
		WithContext("path", path)
}

func InternalError(message string, cause error) *RefGenError {
	return Wrap(cause, CategoryInternal, SeverityError, message)
}
