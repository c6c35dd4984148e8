// Package fairos provides a typed client for the fairOS-dfs HTTP API. The
// public surface centres around the Client type, which authenticates users
// against the server's cookie-based sessions and exposes pod, directory,
// file, key-value, and document operations as one HTTP call per method.
// Typed reads (key-value entries, documents) are exposed as top-level
// generic functions because Go methods cannot carry type parameters.
package fairos
