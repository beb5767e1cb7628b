// Package registry collects discovered scripts per target object and per
// script type, and answers, for one phase, which scripts bring a target from
// its installed version to a desired one.
//
// The lifecycle has two phases. A Builder is fed during discovery and
// resolves conflicts as scripts arrive:
//   - target names are case-sensitive keys; the first casing seen wins and
//     any later name differing only by case is rejected (ErrCaseMismatch)
//   - two scripts in the same slot (phase, from version, version) are
//     arbitrated by source index: the higher index wins, ties keep the first
//     registered script (ErrDuplicateSlot)
//
// Build freezes the builder into a Registry that is read-only and can be
// shared by concurrent readers without locking.
package registry
