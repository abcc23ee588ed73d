// Package remotestore is the object-storage side of reconciliation, backed
// by Amazon S3 or any S3-compatible server.
//
// Errors are classified: 404-class responses (NotFound, NoSuchKey,
// NoSuchBucket) wrap common.ErrNotFound and only mean "absent". Anything
// else, including AccessDenied and throttling, wraps
// common.ErrTransientStore and must be propagated.
package remotestore
