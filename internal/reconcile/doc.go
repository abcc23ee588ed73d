// Package reconcile converges the registry artifact between the local
// filesystem and one encrypted object in one project bucket.
//
// Every call re-derives the world state from live probes:
//
//	L  the local artifact file exists
//	B  exactly one bucket carries the project prefix
//	R  the artifact object exists in that bucket
//
// A discovered bucket missing the project tag gets it back before any
// action; one tagged for another project is an ambiguous state.
//
// and takes one action:
//
//	L B R
//	T F -  create bucket, record it, push
//	T T F  push
//	T T T  nothing, unless forced, the registry had to be realigned or
//	       opening the artifact upgraded its schema
//	F T T  pull, decrypt, open
//	F T F  create artifact, record bucket, push
//	F F -  create bucket, create artifact, record bucket, push
//
// Errors returned by Reconcile are *StepError values wrapping exactly one of
// common.ErrNotFound, ErrAmbiguousState, ErrTransientStore, ErrDecryption
// (ErrInvalidKey included) or ErrLocalIO.
//
// Pushing copies the artifact to a disposable twin, encrypts the twin in
// place, uploads it and removes it on every exit path.
//
// There is no distributed lock. Two reconcilers running against the same
// project at once can each create a bucket, and the loser of a first-key
// race may see the winner's key. Run one writer per project.
package reconcile
