package fixup

import (
	"fmt"
	"strings"
)

// InvalidTokenError reports a malformed token. It is fatal to the build.
type InvalidTokenError struct {
	Reason string
	Token  *Token
}

// Error implements the error interface.
func (e *InvalidTokenError) Error() string {
	if e.Token == nil {
		return "invalid fixup token: " + e.Reason
	}
	return fmt.Sprintf("invalid %s fixup token for %s.%s: %s",
		e.Token.Kind, describe(e.Token.Target.InstanceType), e.Token.Target.MemberName(), e.Reason)
}

// ChainLink is one object in a reported dependency cycle.
type ChainLink struct {
	Type   string
	Name   string
	Member string
	Line   int
	Column int
}

func (l ChainLink) String() string {
	var sb strings.Builder
	sb.WriteString(describe(l.Type))
	if l.Name != "" {
		fmt.Fprintf(&sb, " %q", l.Name)
	}
	if l.Member != "" {
		fmt.Fprintf(&sb, ".%s", l.Member)
	}
	if l.Line != 0 {
		fmt.Fprintf(&sb, " (line %d, column %d)", l.Line, l.Column)
	}
	return sb.String()
}

// CircularEvaluationError reports deferred evaluations that each need the
// other's result.
type CircularEvaluationError struct {
	Chain []ChainLink
}

// Error implements the error interface.
func (e *CircularEvaluationError) Error() string {
	links := make([]string, len(e.Chain))
	for i, l := range e.Chain {
		links[i] = l.String()
	}
	return "circular deferred evaluation: " + strings.Join(links, " -> ")
}

// UnresolvedRef is a name that never became available.
type UnresolvedRef struct {
	Name         string
	InstanceType string
	Member       string
	Line         int
	Column       int
}

// UnresolvedNameError lists every name still missing at end of document.
type UnresolvedNameError struct {
	Refs []UnresolvedRef
}

// Error implements the error interface.
func (e *UnresolvedNameError) Error() string {
	var sb strings.Builder
	for i, r := range e.Refs {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "unresolved reference %q", r.Name)
		if r.Member != "" {
			fmt.Fprintf(&sb, " in %s.%s", describe(r.InstanceType), r.Member)
		}
		if r.Line != 0 {
			fmt.Fprintf(&sb, " at line %d, column %d", r.Line, r.Column)
		}
	}
	return sb.String()
}

// UnresolvedRefsFor builds one UnresolvedRef per missing name of tok.
func UnresolvedRefsFor(tok *Token, missing []string) []UnresolvedRef {
	refs := make([]UnresolvedRef, 0, len(missing))
	for _, name := range missing {
		refs = append(refs, UnresolvedRef{
			Name:         name,
			InstanceType: tok.Target.InstanceType,
			Member:       tok.Target.MemberName(),
			Line:         tok.Line,
			Column:       tok.Column,
		})
	}
	return refs
}

func describe(typeName string) string {
	if typeName == "" {
		return "<document>"
	}
	return typeName
}
