// Package store persists snapshot documents by name.
//
// Two backends implement Store: FileStore keeps snapshots under a local
// directory and S3Store keeps them in an S3 bucket under a key prefix. Open
// picks the backend from a location string:
//
//	./snapshots              FileStore rooted at ./snapshots
//	file:///var/lib/vdiff    FileStore rooted at /var/lib/vdiff
//	s3://bucket/prefix       S3Store on bucket, keys under prefix/
//
// Names are slash separated and must stay inside the store; absolute names
// and names escaping with ".." are rejected with ErrInvalidName.
package store
