// Package cli is the regsync command tree.
//
//	regsync reconcile [--force]   converge local and remote artifact
//	regsync status                print the probed state without acting
//	regsync resources             list the registry of the local artifact
//	regsync version               print build information
//
// Every command runs under --timeout. Global flags are described in
// package config.
package cli
