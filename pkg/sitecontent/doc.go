// Package sitecontent is the content-access layer for the association
// website: a typed CRUD store over a remote document database, a
// progress-reporting upload pipeline over pluggable blob storage, a
// cross-collection feed aggregator, and a document preview resolver.
//
// The package exposes small interfaces for its external collaborators
// (Repository for the document database, BlobStore for blob storage,
// notify.Sender for outbound mail) and ships memory, filesystem, Postgres
// and S3 implementations under subpackages.
//
// Consistency Model
//
// Every store operation is a single remote read or write. There are no
// cross-operation transactions: a List immediately after a Create may not
// observe the new document, and concurrent updates to the same document
// are last-write-wins. That is acceptable for marketing content and is
// intentionally not papered over at this layer.
package sitecontent
