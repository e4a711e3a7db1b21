package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBPingError
	DBQueryError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError

	// Facet registry errors
	FacetConfigError
	FacetScopeError
	FacetLayoutViolationError
	FacetOverflowError

	// Ingestion errors
	IngestSourceError
	IngestDecodeError
	IngestCacheError
	IngestStoreError

	// Classifier errors
	ClassifyRequestError

	// Search errors
	SearchQueryError

	// Rollup errors
	RollupError

	// Server errors
	ServerStartError
)
