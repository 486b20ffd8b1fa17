// Package resolve implements the resolution core of a multi-version package
// environment manager: given a list of package requests and an ordered list
// of repository search paths, it drives an external constraint solver,
// memoizes solved results against a shared cache service, and invalidates
// those memoized results safely across package releases and package
// definition edits.
//
// The package does not itself perform constraint search; that is delegated
// to a SolverContract implementation (see the fakesolver subpackage for a
// reference one). Repository access and cache storage are likewise external
// collaborators, described by the RepoGateway and CacheGateway interfaces.
package resolve
