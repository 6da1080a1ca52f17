// Package projection turns a filtered record set into the three result views:
// the point set, the cause-frequency table and the monthly series. Each
// function is independent and takes an already-filtered slice.
package projection
