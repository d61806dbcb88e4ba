// Package organize sorts verified items chronologically, assigns
// deterministic collision-safe names, buckets items into date-derived
// folder groups, and emits edit-ready manifest files. Downstream stages
// rely on the ascending capture-time ordering this package produces.
package organize
