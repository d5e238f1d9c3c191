package corpex

import (
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// QUERY EVALUATOR
// ═══════════════════════════════════════════════════════════════════════════════
// Grammar (case-insensitive keywords and, or, not; punctuation (, ), ";
// bare * and ? are wildcards; near/N is a single token with an embedded
// distance):
//
//	or_expr   := and_expr ( 'or' and_expr )*
//	and_expr  := not_expr ( 'and' not_expr )*
//	not_expr  := 'not' primary | primary
//	primary   := '(' or_expr ')'
//	           | '"' word (word)+ '"'
//	           | 'near/' N '(' word word+ ')'
//	           | wildcard_or_term
//
// A recursive-descent parser over this grammar produces an AST; Evaluate
// walks the AST, dispatching each leaf to the incidence matrix (plain
// terms), the positional index (phrase/near), or the wildcard router
// (terms containing '*'/'?'), and combines results as roaring bitmaps.
// ═══════════════════════════════════════════════════════════════════════════════

// UnknownTermPolicy controls what the evaluator does when a plain term
// leaf hits TermNotFound inside a Boolean sub-expression: propagate the
// error (the default, spec-mandated behavior) or treat the leaf as the
// empty set. See Open Question #4 — the core surfaces the error; this
// policy is the caller-level decision spec.md leaves open.
type UnknownTermPolicy int

const (
	// PropagateUnknownTerm surfaces TermNotFound to the caller.
	PropagateUnknownTerm UnknownTermPolicy = iota
	// EmptyOnUnknownTerm treats an absent term as matching no documents.
	EmptyOnUnknownTerm
)

// Evaluator parses and evaluates query strings against a fixed set of
// indices built from the same corpus.
type Evaluator struct {
	matrix     *IncidenceMatrix
	positional *PositionalIndex
	router     *Router
	policy     UnknownTermPolicy
}

// NewEvaluator assembles an Evaluator. policy governs unknown-term
// propagation for plain terms inside AND/OR/NOT.
func NewEvaluator(matrix *IncidenceMatrix, positional *PositionalIndex, router *Router, policy UnknownTermPolicy) *Evaluator {
	return &Evaluator{matrix: matrix, positional: positional, router: router, policy: policy}
}

// Evaluate parses and evaluates query, returning the sorted list of
// matching document names.
func (e *Evaluator) Evaluate(query string) ([]string, error) {
	tokens, err := tokenizeQuery(query)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &QuerySyntaxError{Query: query, Reason: "empty query"}
	}

	p := &queryParser{tokens: tokens, query: query}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, &QuerySyntaxError{Query: query, Reason: "unexpected trailing tokens"}
	}

	bm, err := e.evalNode(node)
	if err != nil {
		return nil, err
	}
	return e.matrix.DocumentNames(bm), nil
}

// ─── tokenizer ──────────────────────────────────────────────────────────────

// tokenizeQuery splits query on whitespace, isolating '(', ')', '"' as
// standalone tokens and recognizing 'near/N' as one token.
func tokenizeQuery(query string) ([]string, error) {
	var tokens []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	runes := []rune(query)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '(' || r == ')' || r == '"':
			flush()
			tokens = append(tokens, string(r))
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	return tokens, nil
}

func isQuote(tok string) bool  { return tok == `"` }
func isLParen(tok string) bool { return tok == "(" }
func isRParen(tok string) bool { return tok == ")" }

func isKeyword(tok, kw string) bool {
	return strings.EqualFold(tok, kw)
}

func isNear(tok string) (distance int, ok bool) {
	lower := strings.ToLower(tok)
	if !strings.HasPrefix(lower, "near/") {
		return 0, false
	}
	n, err := strconv.Atoi(lower[len("near/"):])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ─── AST ────────────────────────────────────────────────────────────────────

type nodeKind int

const (
	nodeTerm nodeKind = iota
	nodeWildcard
	nodePhrase
	nodeNear
	nodeAnd
	nodeOr
	nodeNot
)

type queryNode struct {
	kind     nodeKind
	term     string
	words    []string
	distance int
	left     *queryNode
	right    *queryNode
	child    *queryNode
}

// ─── parser ─────────────────────────────────────────────────────────────────

type queryParser struct {
	tokens []string
	pos    int
	query  string
}

func (p *queryParser) peek() (string, bool) {
	if p.pos >= len(p.tokens) {
		return "", false
	}
	return p.tokens[p.pos], true
}

func (p *queryParser) next() (string, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *queryParser) syntaxError(reason string) error {
	return &QuerySyntaxError{Query: p.query, Reason: reason}
}

func (p *queryParser) parseOr() (*queryNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || !isKeyword(tok, "or") {
			break
		}
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &queryNode{kind: nodeOr, left: left, right: right}
	}
	return left, nil
}

func (p *queryParser) parseAnd() (*queryNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || !isKeyword(tok, "and") {
			break
		}
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &queryNode{kind: nodeAnd, left: left, right: right}
	}
	return left, nil
}

func (p *queryParser) parseNot() (*queryNode, error) {
	tok, ok := p.peek()
	if ok && isKeyword(tok, "not") {
		p.next()
		child, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &queryNode{kind: nodeNot, child: child}, nil
	}
	return p.parsePrimary()
}

func (p *queryParser) parsePrimary() (*queryNode, error) {
	tok, ok := p.next()
	if !ok {
		return nil, p.syntaxError("unexpected end of query, expected an operand")
	}

	switch {
	case isLParen(tok):
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.next()
		if !ok || !isRParen(closing) {
			return nil, p.syntaxError("unbalanced parentheses")
		}
		return inner, nil

	case isQuote(tok):
		var words []string
		for {
			w, ok := p.next()
			if !ok {
				return nil, p.syntaxError("unclosed quote")
			}
			if isQuote(w) {
				break
			}
			words = append(words, strings.ToLower(w))
		}
		if len(words) < 2 {
			return nil, p.syntaxError("phrase must have at least two words")
		}
		return &queryNode{kind: nodePhrase, words: words}, nil

	default:
		if distance, ok := isNear(tok); ok {
			return p.parseNear(distance)
		}
		if strings.HasPrefix(strings.ToLower(tok), "near/") {
			return nil, p.syntaxError("near/N distance must be a number")
		}
		if isKeyword(tok, "and") || isKeyword(tok, "or") || isKeyword(tok, "not") {
			return nil, p.syntaxError("unexpected keyword " + tok + " where an operand was expected")
		}
		lower := strings.ToLower(tok)
		if strings.ContainsAny(lower, "*?") {
			return &queryNode{kind: nodeWildcard, term: lower}, nil
		}
		return &queryNode{kind: nodeTerm, term: lower}, nil
	}
}

func (p *queryParser) parseNear(distance int) (*queryNode, error) {
	open, ok := p.next()
	if !ok || !isLParen(open) {
		return nil, p.syntaxError("near/N must be followed by '('")
	}

	var words []string
	for {
		tok, ok := p.peek()
		if !ok {
			return nil, p.syntaxError("unclosed near/N argument list")
		}
		if isRParen(tok) {
			p.next()
			break
		}
		p.next()
		words = append(words, strings.ToLower(tok))
	}

	if len(words) < 2 {
		return nil, p.syntaxError("near/N requires at least two words")
	}
	return &queryNode{kind: nodeNear, words: words, distance: distance}, nil
}

// ─── evaluation ─────────────────────────────────────────────────────────────

func (e *Evaluator) evalNode(n *queryNode) (*roaring.Bitmap, error) {
	switch n.kind {
	case nodeTerm:
		return e.evalTerm(n.term)
	case nodeWildcard:
		return e.evalWildcard(n.term)
	case nodePhrase:
		return e.evalPhrase(n.words)
	case nodeNear:
		return e.evalNear(n.words, n.distance)
	case nodeAnd:
		l, err := e.evalNode(n.left)
		if err != nil {
			return nil, err
		}
		r, err := e.evalNode(n.right)
		if err != nil {
			return nil, err
		}
		return e.matrix.And(l, r), nil
	case nodeOr:
		l, err := e.evalNode(n.left)
		if err != nil {
			return nil, err
		}
		r, err := e.evalNode(n.right)
		if err != nil {
			return nil, err
		}
		return e.matrix.Or(l, r), nil
	case nodeNot:
		c, err := e.evalNode(n.child)
		if err != nil {
			return nil, err
		}
		return e.matrix.Not(c), nil
	default:
		return nil, ErrInternalInvariant
	}
}

func (e *Evaluator) evalTerm(term string) (*roaring.Bitmap, error) {
	bm, err := e.matrix.Row(term)
	if err != nil {
		var notFound *TermNotFound
		if e.policy == EmptyOnUnknownTerm && isTermNotFound(err, &notFound) {
			return roaring.NewBitmap(), nil
		}
		return nil, err
	}
	return bm, nil
}

func isTermNotFound(err error, out **TermNotFound) bool {
	tnf, ok := err.(*TermNotFound)
	if ok {
		*out = tnf
	}
	return ok
}

func (e *Evaluator) evalWildcard(pattern string) (*roaring.Bitmap, error) {
	ids, err := e.router.Resolve(pattern)
	if err != nil {
		return nil, err
	}
	bm := roaring.New()
	bm.AddMany(ids)
	return bm, nil
}

func (e *Evaluator) evalPhrase(words []string) (*roaring.Bitmap, error) {
	matches, err := e.positional.FindPhrase(words)
	if err != nil {
		if e.policy == EmptyOnUnknownTerm {
			var tnf *TermNotFound
			if isTermNotFound(err, &tnf) {
				return roaring.NewBitmap(), nil
			}
		}
		return nil, err
	}

	bm := roaring.New()
	for _, m := range matches {
		bm.Add(m.DocumentID)
	}
	return bm, nil
}

func (e *Evaluator) evalNear(words []string, distance int) (*roaring.Bitmap, error) {
	matches, err := e.positional.Near(words, distance)
	if err != nil {
		if e.policy == EmptyOnUnknownTerm {
			var tnf *TermNotFound
			if isTermNotFound(err, &tnf) {
				return roaring.NewBitmap(), nil
			}
		}
		return nil, err
	}

	bm := roaring.New()
	for _, m := range matches {
		bm.Add(m.DocumentID)
	}
	return bm, nil
}
