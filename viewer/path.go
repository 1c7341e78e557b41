package viewer

// ParseMethodPath converts a dotted, optionally indexed method path such as
// "viewer.controlAnimation" or "parts[0,2].visible" into its flattened token
// list: identifiers and index integers in order, with dots and brackets
// stripped ("a[0,1].b" yields ["a" "0" "1" "b"]). The grammar is
//
//	path       = segment ("." segment)*
//	segment    = identifier index*
//	index      = "[" integer ("," integer)* "]"
//	identifier = one or more of A-Z a-z 0-9 "_" "$"
//
// and the whole input must match it. Malformed input yields (nil, false);
// there is no error, absence of a parse is the sentinel.
func ParseMethodPath(s string) ([]string, bool) {
	sc := scanner{input: s}
	tokens, ok := sc.path()
	if !ok || sc.pos != len(sc.input) {
		return nil, false
	}
	return tokens, true
}

type scanner struct {
	input string
	pos   int
}

func (sc *scanner) path() ([]string, bool) {
	var tokens []string
	if !sc.segment(&tokens) {
		return nil, false
	}
	for sc.eat('.') {
		if !sc.segment(&tokens) {
			return nil, false
		}
	}
	return tokens, true
}

func (sc *scanner) segment(tokens *[]string) bool {
	id := sc.identifier()
	if id == "" {
		return false
	}
	*tokens = append(*tokens, id)
	for sc.eat('[') {
		n, ok := sc.integer()
		if !ok {
			return false
		}
		*tokens = append(*tokens, n)
		for sc.eat(',') {
			if n, ok = sc.integer(); !ok {
				return false
			}
			*tokens = append(*tokens, n)
		}
		if !sc.eat(']') {
			return false
		}
	}
	return true
}

func (sc *scanner) identifier() string {
	start := sc.pos
	for sc.pos < len(sc.input) && isIdentByte(sc.input[sc.pos]) {
		sc.pos++
	}
	return sc.input[start:sc.pos]
}

func (sc *scanner) integer() (string, bool) {
	start := sc.pos
	for sc.pos < len(sc.input) && sc.input[sc.pos] >= '0' && sc.input[sc.pos] <= '9' {
		sc.pos++
	}
	if sc.pos == start {
		return "", false
	}
	return sc.input[start:sc.pos], true
}

func (sc *scanner) eat(c byte) bool {
	if sc.pos < len(sc.input) && sc.input[sc.pos] == c {
		sc.pos++
		return true
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
