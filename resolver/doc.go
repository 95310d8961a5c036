// Package resolver turns a symbolic work destination into the identity of
// the single handler that services it.
//
// Handlers advertise the actions they service in a Registry. Resolution
// succeeds only when exactly one handler matches; zero or several matches
// yield a ResolutionError so the caller can decide whether the failure is
// fatal for its path.
package resolver
