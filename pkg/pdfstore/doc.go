// Package pdfstore provides a library for storing and managing PDF documents
// with pluggable blob storage and record storage backends.
//
// It exposes a single Service interface that orchestrates the two supported
// upload protocols (a two-phase presigned-URL upload for large files and a
// single-shot direct upload for smaller ones), the pending-to-final metadata
// lifecycle they drive, and read/list/delete operations over the stored
// library. Admission control (bearer-key authentication and hourly/daily
// upload rate limits) lives alongside the service in this package.
//
// Implementations of blob stores (memory, S3) and record stores (memory,
// Postgres, DynamoDB) are provided under subpackages. All coordination
// between concurrent requests happens through those external stores; the
// service itself keeps no shared mutable state.
package pdfstore
