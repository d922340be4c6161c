package config

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, sqlitePath string, seed bool) *Repository {
	return &Repository{
		backend:    backend,
		sqlitePath: sqlitePath,
		seed:       seed,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewSchemaForTest creates a Schema config for testing purposes
func NewSchemaForTest(path string) *Schema {
	return &Schema{path: path}
}
