package naming

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// ParseError reports a rejected script name.
type ParseError struct {
	RawName string
	Origin  string
	Reason  string
}

func (e *ParseError) Error() string {
	if e.Origin != "" && e.Origin != e.RawName {
		return fmt.Sprintf("invalid script name %q (%s): %s", e.RawName, e.Origin, e.Reason)
	}
	return fmt.Sprintf("invalid script name %q: %s", e.RawName, e.Reason)
}

// Unwrap makes ParseError match cksetup.ErrInvalidScriptName.
func (e *ParseError) Unwrap() error { return cksetup.ErrInvalidScriptName }

var versionSuffix = regexp.MustCompile(`(?i)(?:^|\.)(?:(\d+\.\d+\.\d+)\.to\.)?(\d+\.\d+\.\d+)$`)

// strayToken matches a version fragment, "to" or a step left on the target
// once the suffixes are stripped.
var strayToken = regexp.MustCompile(`(?i)\.(?:[-+]?\d+|to|init|install|settle|initcontent|installcontent|settlecontent)$`)

type stepSuffix struct {
	suffix  string
	step    cksetup.SetupStep
	content bool
}

// Content forms come first so that ".InstallContent" is never read as ".Install".
var stepSuffixes = []stepSuffix{
	{".InitContent", cksetup.StepInit, true},
	{".InstallContent", cksetup.StepInstall, true},
	{".SettleContent", cksetup.StepSettle, true},
	{".Init", cksetup.StepInit, false},
	{".Install", cksetup.StepInstall, false},
	{".Settle", cksetup.StepSettle, false},
}

// TryParse parses rawName. origin is recorded in the result and in errors;
// when hasExtension is true the last dotted segment is stripped first.
func TryParse(rawName, origin string, hasExtension bool) (cksetup.ParsedName, error) {
	fail := func(format string, args ...any) (cksetup.ParsedName, error) {
		return cksetup.ParsedName{}, &ParseError{RawName: rawName, Origin: origin, Reason: fmt.Sprintf(format, args...)}
	}

	name := rawName
	if name == "" {
		return fail("empty name")
	}

	var extension string
	if hasExtension {
		dot := strings.LastIndexByte(name, '.')
		if dot < 0 {
			return fail("missing file extension")
		}
		extension = name[dot+1:]
		name = name[:dot]
		if extension == "" {
			return fail("empty file extension")
		}
		if name == "" {
			return fail("empty name before extension")
		}
	}

	var from, to *cksetup.Version
	if m := versionSuffix.FindStringSubmatchIndex(name); m != nil {
		var err error
		to, err = cksetup.ParseVersion(name[m[4]:m[5]])
		if err != nil {
			return fail("%v", err)
		}
		if m[2] >= 0 {
			from, err = cksetup.ParseVersion(name[m[2]:m[3]])
			if err != nil {
				return fail("%v", err)
			}
			if *from == *to {
				return fail("migration from %s to itself", from)
			}
		}
		name = name[:m[0]]
	}

	step, content := cksetup.StepNone, false
	for _, s := range stepSuffixes {
		if len(name) >= len(s.suffix) && strings.EqualFold(name[len(name)-len(s.suffix):], s.suffix) {
			step, content = s.step, s.content
			name = name[:len(name)-len(s.suffix)]
			break
		}
	}

	if name == "" {
		return fail("empty target name")
	}
	if m := strayToken.FindString(name); m != "" {
		return fail("unexpected %q before the suffix", m[1:])
	}

	return cksetup.ParsedName{
		TargetFullName: name,
		Step:           step,
		IsContent:      content,
		FromVersion:    from,
		Version:        to,
		Extension:      extension,
		Origin:         origin,
	}, nil
}

// Format renders a ParsedName back to its script name.
func Format(n cksetup.ParsedName) string {
	var b strings.Builder
	b.WriteString(n.TargetFullName)
	if n.Step != cksetup.StepNone {
		b.WriteByte('.')
		b.WriteString(cksetup.Phase{Step: n.Step, Content: n.IsContent}.String())
	}
	if n.FromVersion != nil {
		b.WriteByte('.')
		b.WriteString(n.FromVersion.String())
		b.WriteString(".to")
	}
	if n.Version != nil {
		b.WriteByte('.')
		b.WriteString(n.Version.String())
	}
	if n.Extension != "" {
		b.WriteByte('.')
		b.WriteString(n.Extension)
	}
	return b.String()
}
