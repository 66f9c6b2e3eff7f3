// Package profile defines the LED device-profile document: pages (slots) that
// hold ordered color frames plus opaque display metadata. Documents decode from
// JSON or YAML, tolerate numeric fields that upstream tools emit as numbers,
// strings, or booleans, and re-encode with a stable key layout so that a merged
// profile stays diff-minimal against the hand-edited file it came from.
//
// Opaque blobs (product_info, color, word_page, keyframes) are carried as raw
// JSON and never interpreted. Keys the model does not know about are preserved
// on both the document and its pages.
package profile
