// Package naming parses script names into cksetup.ParsedName values.
//
// A script name has the shape
//
//	Target[.Step[Content]][.FROM.to].VERSION[.extension]
//
// where every part but Target is optional, for example:
//
//	CK.sUserCreate.Install.1.1.1.to.1.2.3.sql   migration 1.1.1 -> 1.2.3
//	CK.tUser.1.0.0.sql                          full install of 1.0.0
//	CK.vUser.SettleContent.sql                  unconditional settle script
//
// Format is the inverse of TryParse for names whose target does not itself
// end with a step or version suffix.
package naming
