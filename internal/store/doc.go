// Package store persists a durable log of compilation attempts.
//
// Every Factory construction, successful or not, can be recorded here
// so operators can answer "what programs ran on this host and which of
// them failed" after the fact. The store never caches compiled
// artifacts; programs are always rebuilt from source.
package store
