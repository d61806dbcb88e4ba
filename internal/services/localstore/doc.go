// Package localstore implements the listing, content, and extraction
// services against a local filesystem tree. It is the fallback backend
// for libraries kept on local or mounted storage, and the backend the
// pipeline tests run against.
package localstore
