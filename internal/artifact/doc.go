// Package artifact persists rendered manifests and packages them into a
// reproducible zip archive.
//
// Output is flat: every artifact is written as output_root/name, and every
// archive entry is named by the artifact's base file name.
package artifact
