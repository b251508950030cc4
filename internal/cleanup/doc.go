// Package cleanup deletes source files for sorted images, but only after
// re-verifying each destination's integrity at the moment of deletion.
//
// The re-verify-then-delete pass is the core safety property of the whole
// tool: a photograph leaves the source folder only when its exact byte
// content has just been confirmed at the destination, closing the window
// between "copy succeeded earlier" and "copy is still intact now". One
// image's failure never aborts the batch; failures are recorded on the image
// and surfaced as warnings for manual follow-up.
package cleanup
