package errors

import "net/http"

var (
	ErrCatalogLoad = New(
		"CATALOG_LOAD_ERROR",
		"Region catalog could not be loaded",
		http.StatusInternalServerError,
	)

	ErrNoUsableRegions = New(
		"CATALOG_LOAD_ERROR",
		"Boundary source contains no regions with a defined weight",
		http.StatusInternalServerError,
	)

	ErrSamplingExhausted = New(
		"SAMPLING_EXHAUSTED",
		"Could not place a point inside any region within the retry budget",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
