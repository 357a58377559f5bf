// Package musiccontent manages music assets whose binary payloads live in an
// object store and whose metadata lives in a document repository.
//
// The two stores are kept consistent without a shared transaction: object
// writes are ordered strictly before the metadata write on create, and object
// deletes strictly before the record delete on delete. The only steady-state
// defect this ordering permits is an orphaned object, which the Reconciler
// finds and removes out-of-band. Signed download URLs are never persisted;
// every read path regenerates them because they expire independently of the
// record.
package musiccontent
