package parser

import "regexp"

// openerRewrite is applied, in order, before statement dispatch. Each
// entry folds one alias phrasing into its canonical form so that every
// per-form handler below only ever has to recognize the canonical
// keyword. This centralizes alias handling in one table, per spec.md
// §9 ("Centralize in a single normalization table keyed by the leading
// phrase; avoid scattering synonym checks across per-statement
// handlers"), rather than scattering synonym alternation across every
// regex the way original_source/epp_parser.py does.
type openerRewrite struct {
	pattern *regexp.Regexp
	rewrite func([]string) string
}

var openerRewrites = []openerRewrite{
	// put E into X  ->  set X to E
	{regexp.MustCompile(`(?i)^put\s+(.+)\s+into\s+([A-Za-z_][A-Za-z0-9_]*)$`),
		func(m []string) string { return "set " + m[2] + " to " + m[1] }},
	// let X be E  ->  set X to E
	{regexp.MustCompile(`(?i)^let\s+([A-Za-z_][A-Za-z0-9_]*)\s+be\s+(.+)$`),
		func(m []string) string { return "set " + m[1] + " to " + m[2] }},
	// print/show E  ->  say E
	{regexp.MustCompile(`(?i)^(?:print|show)\s+(.+)$`),
		func(m []string) string { return "say " + m[1] }},
	// increase X by E  ->  add E to X
	{regexp.MustCompile(`(?i)^increase\s+([A-Za-z_][A-Za-z0-9_]*)\s+by\s+(.+)$`),
		func(m []string) string { return "add " + m[2] + " to " + m[1] }},
	// decrease X by E  ->  subtract E from X
	{regexp.MustCompile(`(?i)^decrease\s+([A-Za-z_][A-Za-z0-9_]*)\s+by\s+(.+)$`),
		func(m []string) string { return "subtract " + m[2] + " from " + m[1] }},
	// make list X  ->  create list X
	{regexp.MustCompile(`(?i)^make\s+list\s+([A-Za-z_][A-Za-z0-9_]*)$`),
		func(m []string) string { return "create list " + m[1] }},
	// take E from X  ->  remove E from X
	{regexp.MustCompile(`(?i)^take\s+(.+)\s+from\s+([A-Za-z_][A-Za-z0-9_]*)$`),
		func(m []string) string { return "remove " + m[1] + " from " + m[2] }},
	// do N times  ->  repeat N times
	{regexp.MustCompile(`(?i)^do\s+(.+)\s+times$`),
		func(m []string) string { return "repeat " + m[1] + " times" }},
	// while C do  ->  repeat while C
	{regexp.MustCompile(`(?i)^while\s+(.+)\s+do$`),
		func(m []string) string { return "repeat while " + m[1] }},
	// for every X in E  ->  for each X in E
	{regexp.MustCompile(`(?i)^for\s+every\s+(.+)$`),
		func(m []string) string { return "for each " + m[1] }},
	// function F [with P]  ->  define F [with P]
	{regexp.MustCompile(`(?i)^function\s+(.+)$`),
		func(m []string) string { return "define " + m[1] }},
	// give back E  ->  return E
	{regexp.MustCompile(`(?i)^give\s+back(?:\s+(.+))?$`),
		func(m []string) string {
			if m[1] == "" {
				return "return"
			}
			return "return " + m[1]
		}},
	// run F [with A]  ->  call F [with A]
	{regexp.MustCompile(`(?i)^run\s+(.+)$`),
		func(m []string) string { return "call " + m[1] }},
	// break [loop]  ->  stop
	{regexp.MustCompile(`(?i)^break(?:\s+loop)?$`),
		func(m []string) string { return "stop" }},
	// next [loop]  ->  skip
	{regexp.MustCompile(`(?i)^next(?:\s+loop)?$`),
		func(m []string) string { return "skip" }},
	// stop repeat/for/loop  ->  stop   (drop the optional trailer)
	{regexp.MustCompile(`(?i)^stop(?:\s+(?:repeat|for|loop))?$`),
		func(m []string) string { return "stop" }},
	// skip repeat/for/loop  ->  skip
	{regexp.MustCompile(`(?i)^skip(?:\s+(?:repeat|for|loop))?$`),
		func(m []string) string { return "skip" }},
	// otherwise if/or if C then  ->  otherwise if C then (folded in closer handling too)
	{regexp.MustCompile(`(?i)^or\s+if\s+(.+)$`),
		func(m []string) string { return "otherwise if " + m[1] }},
	// else  ->  otherwise
	{regexp.MustCompile(`(?i)^else$`),
		func(m []string) string { return "otherwise" }},
	// when C then  ->  if C then (the host-call sugar lines "when someone
	// visits/posts ..." do not end in "then", so they pass through unchanged
	// and are matched later in parser.go)
	{regexp.MustCompile(`(?i)^when\s+(.+)\s+then$`),
		func(m []string) string { return "if " + m[1] + " then" }},
	// finish if/repeat/for  ->  end if/repeat/for ; end|finish function -> end define
	{regexp.MustCompile(`(?i)^finish\s+if$`), func(m []string) string { return "end if" }},
	{regexp.MustCompile(`(?i)^finish\s+repeat$`), func(m []string) string { return "end repeat" }},
	{regexp.MustCompile(`(?i)^finish\s+for$`), func(m []string) string { return "end for" }},
	{regexp.MustCompile(`(?i)^(?:end\s+function|finish\s+function|finish\s+define)$`),
		func(m []string) string { return "end define" }},
}

// foldAliases rewrites one line of source text into its canonical
// opener form, applying the first matching rewrite. Lines matching no
// rewrite pass through unchanged (they are either already canonical or
// unrecognized, in which case dispatch below reports the error).
func foldAliases(text string) string {
	for _, r := range openerRewrites {
		if m := r.pattern.FindStringSubmatch(text); m != nil {
			return r.rewrite(m)
		}
	}
	return text
}
