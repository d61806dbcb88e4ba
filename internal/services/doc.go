// Package services defines the narrow contracts the pipeline consumes
// from the external media store: listing, content transfer, and metadata
// extraction. Implementations live in subpackages; the pipeline only
// depends on the interfaces and error classification declared here.
package services
