// Package docs IoT Telemetry Service API.
//
// Service for synthesizing, ingesting and querying IoT device telemetry.
// Generates device records with population-weighted locations constrained
// to administrative boundaries, bulk-loads them into PostGIS and serves
// attribute and radius queries over the stored data.
//
// Main capabilities:
// - Synthetic telemetry generation with configurable missingness
// - Chunked transactional bulk ingestion
// - Geometry backfill from stored lon/lat coordinates
// - Attribute filtering and radius proximity queries
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
