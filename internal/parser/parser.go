// Package parser turns a internal/lexer.Token stream into an
// ast.Program. Its shape — a cursor over the token stream plus a
// recursive parseBlock(terminators) routine — follows spec.md §4.2 and
// the Pratt-parser discipline of babyman-slug-lang/internal/parser, one
// level up: here the "tokens" are whole source lines.
package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/liam13141/epp/internal/ast"
	"github.com/liam13141/epp/internal/diag"
	"github.com/liam13141/epp/internal/exprparser"
	"github.com/liam13141/epp/internal/lexer"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

type Parser struct {
	tokens []lexer.Token
	pos    int
}

func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse runs the full §4.2 algorithm and returns the program or the
// first parse error encountered.
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	p := New(tokens)
	stmts, endText, endLine, err := p.parseBlock(nil, nil)
	if err != nil {
		return nil, err
	}
	if endText != "" {
		return nil, &diag.ParseError{
			Line: endLine, Kind: diag.UnexpectedCloser,
			Detail:     fmt.Sprintf("'%s' is out of place.", endText),
			Suggestion: "This closing word does not match any open block.",
		}
	}
	return &ast.Program{Statements: stmts}, nil
}

func (p *Parser) hasMore() bool { return p.pos < len(p.tokens) }

func (p *Parser) advance() lexer.Token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func canonical(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

var closingKeywords = map[string]bool{
	"otherwise":  true,
	"end if":     true,
	"end repeat": true,
	"end define": true,
	"end for":    true,
}

const elifPrefix = "otherwise if "

func isClosingKeyword(canon string) bool {
	if closingKeywords[canon] {
		return true
	}
	return strings.HasPrefix(canon, elifPrefix)
}

// parseBlock consumes statements until a terminator in `terminators` is
// seen (or, if elifAllowed, an "otherwise if ... then" line), or until
// end of input. It returns the parsed body plus the raw terminator text
// and line (empty/zero if the block ran to end of input legally, i.e.
// terminators is empty — the top-level program).
func (p *Parser) parseBlock(terminators map[string]bool, elifAllowed *bool) ([]ast.Stmt, string, int, error) {
	var stmts []ast.Stmt

	for p.hasMore() {
		tok := p.advance()
		if tok.Kind != lexer.STATEMENT {
			continue
		}

		folded := foldAliases(tok.Text)
		canon := canonical(folded)

		if terminators[canon] {
			return stmts, folded, tok.Line, nil
		}
		if elifAllowed != nil && *elifAllowed && strings.HasPrefix(canon, elifPrefix) {
			return stmts, folded, tok.Line, nil
		}

		if isClosingKeyword(canon) {
			return nil, "", 0, p.unexpectedCloser(tok, terminators)
		}

		stmt, err := p.parseStatement(tok.Line, folded)
		if err != nil {
			return nil, "", 0, err
		}
		stmts = append(stmts, stmt)
	}

	if len(terminators) > 0 {
		line := 1
		if len(p.tokens) > 0 {
			line = p.tokens[len(p.tokens)-1].Line
		}
		expected := expectedList(terminators)
		return nil, "", 0, &diag.ParseError{
			Line: line, Kind: diag.MissingCloser,
			Detail: fmt.Sprintf("I reached the end of the file, but I'm still waiting for %s.", expected),
		}
	}

	return stmts, "", 0, nil
}

func expectedList(terminators map[string]bool) string {
	keys := make([]string, 0, len(terminators))
	for k := range terminators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, " or ")
}

func (p *Parser) unexpectedCloser(tok lexer.Token, terminators map[string]bool) error {
	var suggestion string
	if len(terminators) > 0 {
		suggestion = fmt.Sprintf("I expected %s before this line.", expectedList(terminators))
	} else {
		suggestion = "This closing word does not match any open block."
	}
	return &diag.ParseError{
		Line: tok.Line, Kind: diag.UnexpectedCloser,
		Detail:     fmt.Sprintf("'%s' is out of place.", strings.TrimSpace(tok.Text)),
		Suggestion: suggestion,
	}
}

// ---- statement dispatch -------------------------------------------------

var (
	setRe        = regexp.MustCompile(`(?i)^set\s+([A-Za-z_][A-Za-z0-9_]*)\s+to\s+(.+)$`)
	sayRe        = regexp.MustCompile(`(?i)^say\s+(.+)$`)
	askRe        = regexp.MustCompile(`(?i)^ask\s+(.+)\s+and\s+(?:store|save)\s+(?:in|as)\s+([A-Za-z_][A-Za-z0-9_]*)$`)
	addRe        = regexp.MustCompile(`(?i)^add\s+(.+)\s+to\s+([A-Za-z_][A-Za-z0-9_]*)$`)
	subtractRe   = regexp.MustCompile(`(?i)^subtract\s+(.+)\s+from\s+([A-Za-z_][A-Za-z0-9_]*)$`)
	multiplyRe   = regexp.MustCompile(`(?i)^multiply\s+([A-Za-z_][A-Za-z0-9_]*)\s+by\s+(.+)$`)
	divideRe     = regexp.MustCompile(`(?i)^divide\s+([A-Za-z_][A-Za-z0-9_]*)\s+by\s+(.+)$`)
	createListRe = regexp.MustCompile(`(?i)^create\s+list\s+([A-Za-z_][A-Za-z0-9_]*)$`)
	removeRe     = regexp.MustCompile(`(?i)^remove\s+(.+)\s+from\s+([A-Za-z_][A-Za-z0-9_]*)$`)
	ifRe         = regexp.MustCompile(`(?i)^if\s+(.+)\s+then$`)
	repeatWhileRe = regexp.MustCompile(`(?i)^repeat\s+while\s+(.+)$`)
	repeatTimesRe = regexp.MustCompile(`(?i)^repeat\s+(.+)\s+times$`)
	forEachRe    = regexp.MustCompile(`(?i)^for\s+each\s+([A-Za-z_][A-Za-z0-9_]*)\s+in\s+(.+)$`)
	defineRe     = regexp.MustCompile(`(?i)^define\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s+with\s+(.+))?$`)
	returnRe     = regexp.MustCompile(`(?i)^return(?:\s+(.+))?$`)
	callRe       = regexp.MustCompile(`(?i)^call\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s+with\s+(.+))?$`)

	createWebsiteRe = regexp.MustCompile(`(?i)^(?:create|make|build)\s+(?:a\s+)?(?:website|web\s+site|web\s+app)(?:\s+called\s+(.+?))?\s+and\s+(?:store|save)\s+(?:it\s+)?(?:in|as)\s+([A-Za-z_][A-Za-z0-9_]*)$`)
	visitRouteRe    = regexp.MustCompile(`(?i)^when\s+someone\s+visits\s+(.+)\s+on\s+([A-Za-z_][A-Za-z0-9_]*)\s+(?:show|send|return)\s+(.+)$`)
	postRouteRe     = regexp.MustCompile(`(?i)^when\s+someone\s+posts(?:\s+to)?\s+(.+)\s+on\s+([A-Za-z_][A-Za-z0-9_]*)\s+(?:show|send|return)\s+(.+)$`)
	startServerRe   = regexp.MustCompile(`(?i)^start\s+(?:the\s+)?(?:web|website)\s+server\s+for\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s+on\s+(.+?)\s+port\s+(.+))?$`)
	fetchJSONRe     = regexp.MustCompile(`(?i)^fetch\s+json\s+from\s+(.+)\s+and\s+(?:store|save)\s+(?:in|as)\s+([A-Za-z_][A-Za-z0-9_]*)$`)
	fetchTextRe     = regexp.MustCompile(`(?i)^fetch\s+from\s+(.+)\s+and\s+(?:store|save)\s+(?:in|as)\s+([A-Za-z_][A-Za-z0-9_]*)$`)
)

func (p *Parser) parseStatement(line int, text string) (ast.Stmt, error) {
	// Host-call sugar (§4.6) is checked before the generic statement forms.
	// `text` has already been through foldAliases; the `when ... then`
	// rewrite only matches lines ending in "then", so "when someone
	// visits ..." lines reach this point unchanged.
	if m := createWebsiteRe.FindStringSubmatch(text); m != nil {
		title := m[1]
		if title == "" {
			title = `"EPP Website"`
		}
		expr, err := p.hostCallExpr(line, "create_web_app", []string{title})
		if err != nil {
			return nil, err
		}
		return &ast.Assign{LineNo: line, Name: m[2], Value: expr}, nil
	}
	if m := visitRouteRe.FindStringSubmatch(text); m != nil {
		return p.hostCall(line, "when_someone_visits", []string{m[2], strings.TrimSpace(m[1]), strings.TrimSpace(m[3])})
	}
	if m := postRouteRe.FindStringSubmatch(text); m != nil {
		return p.hostCall(line, "when_someone_posts", []string{m[2], strings.TrimSpace(m[1]), strings.TrimSpace(m[3])})
	}
	if m := startServerRe.FindStringSubmatch(text); m != nil {
		args := []string{m[1]}
		if m[2] != "" && m[3] != "" {
			args = append(args, strings.TrimSpace(m[2]), strings.TrimSpace(m[3]))
		}
		return p.hostCall(line, "start_web_server", args)
	}
	if m := fetchJSONRe.FindStringSubmatch(text); m != nil {
		expr, err := p.hostCallExpr(line, "fetch_json_from_api", []string{strings.TrimSpace(m[1])})
		if err != nil {
			return nil, err
		}
		return &ast.Assign{LineNo: line, Name: m[2], Value: expr}, nil
	}
	if m := fetchTextRe.FindStringSubmatch(text); m != nil {
		expr, err := p.hostCallExpr(line, "fetch_from_api", []string{strings.TrimSpace(m[1])})
		if err != nil {
			return nil, err
		}
		return &ast.Assign{LineNo: line, Name: m[2], Value: expr}, nil
	}

	if m := setRe.FindStringSubmatch(text); m != nil {
		expr, err := exprparser.Parse(m[2], line)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{LineNo: line, Name: m[1], Value: expr}, nil
	}

	if m := sayRe.FindStringSubmatch(text); m != nil {
		expr, err := exprparser.Parse(m[1], line)
		if err != nil {
			return nil, err
		}
		return &ast.Say{LineNo: line, Value: expr}, nil
	}

	if m := askRe.FindStringSubmatch(text); m != nil {
		expr, err := exprparser.Parse(m[1], line)
		if err != nil {
			return nil, err
		}
		return &ast.Ask{LineNo: line, Prompt: expr, Name: m[2]}, nil
	}

	if m := createListRe.FindStringSubmatch(text); m != nil {
		return &ast.ListCreate{LineNo: line, Name: m[1]}, nil
	}

	if m := addRe.FindStringSubmatch(text); m != nil {
		expr, err := exprparser.Parse(m[1], line)
		if err != nil {
			return nil, err
		}
		return &ast.MathMut{LineNo: line, Op: ast.MathAdd, Name: m[2], Operand: expr}, nil
	}

	if m := subtractRe.FindStringSubmatch(text); m != nil {
		expr, err := exprparser.Parse(m[1], line)
		if err != nil {
			return nil, err
		}
		return &ast.MathMut{LineNo: line, Op: ast.MathSub, Name: m[2], Operand: expr}, nil
	}

	if m := multiplyRe.FindStringSubmatch(text); m != nil {
		expr, err := exprparser.Parse(m[2], line)
		if err != nil {
			return nil, err
		}
		return &ast.MathMut{LineNo: line, Op: ast.MathMul, Name: m[1], Operand: expr}, nil
	}

	if m := divideRe.FindStringSubmatch(text); m != nil {
		expr, err := exprparser.Parse(m[2], line)
		if err != nil {
			return nil, err
		}
		return &ast.MathMut{LineNo: line, Op: ast.MathDiv, Name: m[1], Operand: expr}, nil
	}

	if m := removeRe.FindStringSubmatch(text); m != nil {
		expr, err := exprparser.Parse(m[1], line)
		if err != nil {
			return nil, err
		}
		return &ast.ListRemove{LineNo: line, Name: m[2], Value: expr}, nil
	}

	if m := ifRe.FindStringSubmatch(text); m != nil {
		return p.parseIf(line, m[1])
	}

	if m := repeatWhileRe.FindStringSubmatch(text); m != nil {
		cond, err := p.parseCondition(m[1], line)
		if err != nil {
			return nil, err
		}
		body, _, _, err := p.parseBlock(map[string]bool{"end repeat": true}, nil)
		if err != nil {
			return nil, err
		}
		return &ast.RepeatWhile{LineNo: line, Condition: cond, Body: body}, nil
	}

	if m := repeatTimesRe.FindStringSubmatch(text); m != nil {
		expr, err := exprparser.Parse(m[1], line)
		if err != nil {
			return nil, err
		}
		body, _, _, err := p.parseBlock(map[string]bool{"end repeat": true}, nil)
		if err != nil {
			return nil, err
		}
		return &ast.RepeatCount{LineNo: line, Count: expr, Body: body}, nil
	}

	if m := forEachRe.FindStringSubmatch(text); m != nil {
		expr, err := exprparser.Parse(m[2], line)
		if err != nil {
			return nil, err
		}
		body, _, _, err := p.parseBlock(map[string]bool{"end for": true}, nil)
		if err != nil {
			return nil, err
		}
		return &ast.ForEach{LineNo: line, VarName: m[1], Iterable: expr, Body: body}, nil
	}

	if m := defineRe.FindStringSubmatch(text); m != nil {
		params, err := p.splitParameters(m[2], line)
		if err != nil {
			return nil, err
		}
		body, _, _, err := p.parseBlock(map[string]bool{"end define": true}, nil)
		if err != nil {
			return nil, err
		}
		return &ast.DefineFn{LineNo: line, Name: m[1], Params: params, Body: body}, nil
	}

	if text == "stop" {
		return &ast.LoopCtrl{LineNo: line, Kind: ast.LoopBreak}, nil
	}
	if text == "skip" {
		return &ast.LoopCtrl{LineNo: line, Kind: ast.LoopContinue}, nil
	}

	if m := returnRe.FindStringSubmatch(text); m != nil {
		if m[1] == "" {
			return &ast.Return{LineNo: line}, nil
		}
		expr, err := exprparser.Parse(m[1], line)
		if err != nil {
			return nil, err
		}
		return &ast.Return{LineNo: line, Value: expr}, nil
	}

	if m := callRe.FindStringSubmatch(text); m != nil {
		args, err := p.splitArguments(m[2], line)
		if err != nil {
			return nil, err
		}
		return &ast.CallStmt{LineNo: line, Name: m[1], Args: args}, nil
	}

	return nil, p.unknownStatement(line, text)
}

func (p *Parser) hostCall(line int, name string, rawArgs []string) (ast.Stmt, error) {
	args, err := p.hostCallArgs(line, rawArgs)
	if err != nil {
		return nil, err
	}
	return &ast.CallStmt{LineNo: line, Name: name, Args: args}, nil
}

// hostCallExpr builds a call expression (rather than a call statement)
// for the host-call sugar forms that bind their result to a variable
// ("... and store in X").
func (p *Parser) hostCallExpr(line int, name string, rawArgs []string) (ast.Expr, error) {
	args, err := p.hostCallArgs(line, rawArgs)
	if err != nil {
		return nil, err
	}
	return &ast.Call{LineNo: line, Name: name, Args: args}, nil
}

func (p *Parser) hostCallArgs(line int, rawArgs []string) ([]ast.Expr, error) {
	args := make([]ast.Expr, 0, len(rawArgs))
	for _, raw := range rawArgs {
		expr, err := exprparser.Parse(raw, line)
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
	}
	return args, nil
}

// parseIf implements the state machine of spec.md §4.5.
func (p *Parser) parseIf(ifLine int, conditionText string) (ast.Stmt, error) {
	cond, err := p.parseCondition(conditionText, ifLine)
	if err != nil {
		return nil, err
	}

	elifAllowed := true
	body, endText, endLine, err := p.parseBlock(map[string]bool{"otherwise": true, "end if": true}, &elifAllowed)
	if err != nil {
		return nil, err
	}

	result := &ast.If{LineNo: ifLine, Branches: []ast.IfBranch{{LineNo: ifLine, Condition: cond, Body: body}}}

	endCanon := canonical(endText)
	for strings.HasPrefix(endCanon, elifPrefix) {
		branchText := strings.TrimSpace(endText)
		m := regexp.MustCompile(`(?i)^otherwise\s+if\s+(.+)\s+then$`).FindStringSubmatch(branchText)
		if m == nil {
			return nil, &diag.ParseError{
				Line: endLine, Kind: diag.MalformedCond,
				Detail:     "I expected 'otherwise if ... then' or 'or if ... then'.",
				Suggestion: "Try: otherwise if x equals 10 then",
			}
		}
		branchCond, err := p.parseCondition(strings.TrimSpace(m[1]), endLine)
		if err != nil {
			return nil, err
		}
		branchBody, nextEnd, nextLine, err := p.parseBlock(map[string]bool{"otherwise": true, "end if": true}, &elifAllowed)
		if err != nil {
			return nil, err
		}
		result.Branches = append(result.Branches, ast.IfBranch{LineNo: endLine, Condition: branchCond, Body: branchBody})
		endText, endLine = nextEnd, nextLine
		endCanon = canonical(endText)
	}

	if endCanon == "otherwise" {
		elseBody, _, _, err := p.parseBlock(map[string]bool{"end if": true}, nil)
		if err != nil {
			return nil, err
		}
		result.Else = elseBody
	}

	return result, nil
}

// ---- conditions ----------------------------------------------------------

type condPattern struct {
	re *regexp.Regexp
	op string
}

var condPatterns = []condPattern{
	{regexp.MustCompile(`(?i)^(.+?)\s+is\s+greater\s+than\s+or\s+equal\s+to\s+(.+)$`), ">="},
	{regexp.MustCompile(`(?i)^(.+?)\s+is\s+less\s+than\s+or\s+equal\s+to\s+(.+)$`), "<="},
	{regexp.MustCompile(`(?i)^(.+?)\s+is\s+not\s+equal\s+to\s+(.+)$`), "!="},
	{regexp.MustCompile(`(?i)^(.+?)\s+is\s+equal\s+to\s+(.+)$`), "=="},
	{regexp.MustCompile(`(?i)^(.+?)\s+is\s+at\s+least\s+(.+)$`), ">="},
	{regexp.MustCompile(`(?i)^(.+?)\s+is\s+at\s+most\s+(.+)$`), "<="},
	{regexp.MustCompile(`(?i)^(.+?)\s+does\s+not\s+contain\s+(.+)$`), "not_contains"},
	{regexp.MustCompile(`(?i)^(.+?)\s+contains\s+(.+)$`), "contains"},
	{regexp.MustCompile(`(?i)^(.+?)\s+is\s+greater\s+than\s+(.+)$`), ">"},
	{regexp.MustCompile(`(?i)^(.+?)\s+is\s+bigger\s+than\s+(.+)$`), ">"},
	{regexp.MustCompile(`(?i)^(.+?)\s+is\s+less\s+than\s+(.+)$`), "<"},
	{regexp.MustCompile(`(?i)^(.+?)\s+is\s+smaller\s+than\s+(.+)$`), "<"},
	{regexp.MustCompile(`(?i)^(.+?)\s+equals\s+(.+)$`), "=="},
	{regexp.MustCompile(`(?i)^(.+?)\s+is\s+not\s+(.+)$`), "!="},
}

func (p *Parser) parseCondition(raw string, line int) (ast.Expr, error) {
	raw = strings.TrimSpace(raw)
	for _, cp := range condPatterns {
		m := cp.re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		left, err := exprparser.Parse(strings.TrimSpace(m[1]), line)
		if err != nil {
			return nil, err
		}
		right, err := exprparser.Parse(strings.TrimSpace(m[2]), line)
		if err != nil {
			return nil, err
		}
		switch cp.op {
		case "contains":
			return &ast.Contains{LineNo: line, Haystack: left, Needle: right}, nil
		case "not_contains":
			return &ast.Contains{LineNo: line, Haystack: left, Needle: right, Negate: true}, nil
		default:
			return &ast.Binary{LineNo: line, Op: cp.op, Left: left, Right: right}, nil
		}
	}
	// Bare expression: evaluated for truthiness at runtime.
	return exprparser.Parse(raw, line)
}

// ---- parameter / argument splitting ---------------------------------------

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (p *Parser) splitParameters(raw string, line int) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	hasComma := strings.Contains(raw, ",")
	hasAnd := regexp.MustCompile(`(?i)\s+and\s+`).MatchString(raw)
	if hasComma && hasAnd {
		return nil, &diag.ParseError{
			Line: line, Kind: diag.MixedParamStyles,
			Detail: "I found both commas and 'and' in this parameter list; use one style.",
		}
	}

	var parts []string
	if hasComma {
		parts = strings.Split(raw, ",")
	} else {
		parts = regexp.MustCompile(`(?i)\s+and\s+`).Split(raw, -1)
	}

	params := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !identRe.MatchString(part) {
			return nil, &diag.ParseError{
				Line: line, Kind: diag.BadParameterList,
				Detail:     fmt.Sprintf("'%s' is not a valid parameter name.", part),
				Suggestion: "Use names like 'x', 'total', or 'item_count'.",
			}
		}
		params = append(params, part)
	}
	return params, nil
}

// splitArguments splits a `with ...` argument list on top-level commas,
// respecting quotes, brackets, and parens, then parses each piece as an
// expression.
func (p *Parser) splitArguments(raw string, line int) ([]ast.Expr, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var args []ast.Expr
	var chunk strings.Builder
	var quote byte
	depth := 0

	flush := func() error {
		candidate := strings.TrimSpace(chunk.String())
		chunk.Reset()
		if candidate == "" {
			return nil
		}
		expr, err := exprparser.Parse(candidate, line)
		if err != nil {
			return err
		}
		args = append(args, expr)
		return nil
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if quote != 0 {
			chunk.WriteByte(c)
			if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			quote = c
			chunk.WriteByte(c)
		case c == '(' || c == '[' || c == '{':
			depth++
			chunk.WriteByte(c)
		case c == ')' || c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
			chunk.WriteByte(c)
		case c == ',' && depth == 0:
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			chunk.WriteByte(c)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return args, nil
}

// ---- typo suggestions ------------------------------------------------------

// commandExamples maps a canonical leading phrase to one example usage,
// grounded on original_source/epp_parser.py's COMMAND_SUGGESTIONS table.
var commandExamples = map[string]string{
	"set":             "set x to 10",
	"let":             "let x be 10",
	"put":             "put 10 into x",
	"say":             `say "Hello World"`,
	"print":           `print "Hello World"`,
	"show":            `show "Hello World"`,
	"add":             "add 5 to x",
	"increase":        "increase x by 5",
	"subtract":        "subtract 3 from x",
	"decrease":        "decrease x by 3",
	"multiply":        "multiply x by 2",
	"divide":          "divide x by 4",
	"if":              "if x is greater than 10 then",
	"when":            "when x is greater than 10 then",
	"otherwise":       "otherwise",
	"else":            "else",
	"otherwise if":    "otherwise if x is less than 5 then",
	"or if":           "or if x is less than 5 then",
	"repeat":          "repeat 5 times",
	"do":              "do 5 times",
	"for each":        "for each item in mylist",
	"for every":       "for every item in mylist",
	"define":          "define greet with name",
	"function":        "function greet with name",
	"return":          "return x",
	"give back":       "give back x",
	"call":            `call greet with "Alice"`,
	"run":             `run greet with "Alice"`,
	"create list":     "create list mylist",
	"make list":       "make list mylist",
	"remove":          "remove 5 from mylist",
	"take":            "take 5 from mylist",
	"ask":             `ask "What is your name?" and store in name`,
	"stop":            "stop repeat",
	"break":           "break loop",
	"skip":            "skip repeat",
	"next":            "next loop",
	"end if":          "end if",
	"finish if":       "finish if",
	"end repeat":      "end repeat",
	"finish repeat":   "finish repeat",
	"end define":      "end define",
	"end function":    "end function",
	"finish function":  "finish function",
	"end for":         "end for",
	"finish for":       "finish for",
}

// unknownStatement reports a friendly parse error, naming the nearest
// known command by fuzzy ranking (§4.7), grounded on
// other_examples/opal-lang-opal__planner.go's findClosestMatch.
func (p *Parser) unknownStatement(line int, text string) error {
	canon := canonical(text)

	keys := make([]string, 0, len(commandExamples))
	for k := range commandExamples {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	candidate := canon
	if words := strings.Fields(canon); len(words) >= 2 {
		candidate = strings.Join(words[:2], " ")
	}

	best := closestMatch(canon, keys)
	if best == "" {
		best = closestMatch(candidate, keys)
	}

	var suggestion string
	if best != "" {
		suggestion = fmt.Sprintf("Did you mean '%s'?", commandExamples[best])
	} else {
		suggestion = `Try commands like 'set x to 10' or 'say "Hello"'.`
	}

	return &diag.ParseError{
		Line: line, Kind: diag.UnknownStatement,
		Detail:     fmt.Sprintf("I don't understand '%s'.", strings.TrimSpace(text)),
		Suggestion: suggestion,
	}
}

// closestMatch ranks candidates by fuzzy-match score and returns the
// best one within a sane distance, or "" if nothing is close enough.
func closestMatch(target string, candidates []string) string {
	best := ""
	bestScore := -1 << 31
	for _, c := range candidates {
		if !fuzzy.MatchNormalizedFold(target, c) && !fuzzy.MatchNormalizedFold(c, target) {
			continue
		}
		score := fuzzy.RankMatchNormalizedFold(target, c)
		if score < 0 {
			score = fuzzy.RankMatchNormalizedFold(c, target)
		}
		if score < 0 {
			continue
		}
		if best == "" || score < bestScore {
			best, bestScore = c, score
		}
	}
	if best != "" {
		return best
	}
	// Fall back to edit-distance-style Levenshtein via fuzzy.LevenshteinDistance
	// for near-misses that RankMatch's subsequence model doesn't catch
	// (e.g. "strat" vs "start"): accept within a distance of 2, matching
	// spec.md §4.2's "minimum distance ≤ 2" suggestion rule.
	bestDist := 2
	for _, c := range candidates {
		d := fuzzy.LevenshteinDistance(target, c)
		if d <= bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
