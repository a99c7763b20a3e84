// Package domain defines the core domain types, wire messages, repository
// interfaces, and sentinel errors. No implementation code lives here.
package domain
