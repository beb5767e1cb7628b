// Package scanner discovers scripts in the directories of script sources
// and registers them in a registry builder.
//
// The lower-cased file extension is the script type. Files whose type has no
// enabled handler are skipped; names that do not parse are rejected with a
// warning. Scripts keep a lazy loader, so content is read only when a script
// runs.
package scanner
