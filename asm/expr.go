package asm

// Constant expressions fold as they parse, in 16-bit wrapping arithmetic.
//
//	bitwise  := ['~'] additive { ('&' | '|' | '^') additive }
//	additive := term { ('+' | '-') term }
//	term     := factor { ('*' | '/' | '%') factor }
//	factor   := '(' bitwise ')' | '-' factor | number
//
// Bitwise operators bind looser than arithmetic and apply strictly left to
// right. A leading '~' complements the whole first additive expression.

func (p *parser) bitwise() (value int16, err error) {
	invert := false
	if p.peek().Kind == TOKEN_TILDE {
		p.next()
		invert = true
	}

	value, err = p.additive()
	if err != nil {
		return
	}
	if invert {
		value = ^value
	}

	for {
		op := p.peek().Kind
		if op != TOKEN_AND && op != TOKEN_OR && op != TOKEN_XOR {
			return
		}
		p.next()

		var rhs int16
		rhs, err = p.additive()
		if err != nil {
			return
		}

		switch op {
		case TOKEN_AND:
			value &= rhs
		case TOKEN_OR:
			value |= rhs
		case TOKEN_XOR:
			value ^= rhs
		}
	}
}

func (p *parser) additive() (value int16, err error) {
	value, err = p.term()
	if err != nil {
		return
	}

	for {
		tok := p.peek()
		switch {
		case tok.Kind == TOKEN_PLUS || tok.Kind == TOKEN_MINUS:
			p.next()
		case tok.IsNegative():
			// `n -1` lexes as a negative literal; adding it subtracts.
		default:
			return
		}

		var rhs int16
		rhs, err = p.term()
		if err != nil {
			return
		}

		if tok.Kind == TOKEN_MINUS {
			value -= rhs
		} else {
			value += rhs
		}
	}
}

func (p *parser) term() (value int16, err error) {
	value, err = p.factor()
	if err != nil {
		return
	}

	for {
		op := p.peek()
		if op.Kind != TOKEN_STAR && op.Kind != TOKEN_SLASH && op.Kind != TOKEN_PERCENT {
			return
		}
		p.next()

		var rhs int16
		rhs, err = p.factor()
		if err != nil {
			return
		}

		switch op.Kind {
		case TOKEN_STAR:
			value *= rhs
		case TOKEN_SLASH, TOKEN_PERCENT:
			if rhs == 0 {
				err = p.errorAt(op, ErrDivideByZero)
				return
			}
			if op.Kind == TOKEN_SLASH {
				value /= rhs
			} else {
				value %= rhs
			}
		}
	}
}

func (p *parser) factor() (value int16, err error) {
	tok := p.next()

	switch tok.Kind {
	case TOKEN_NUMBER:
		value = tok.Value
	case TOKEN_MINUS:
		value, err = p.factor()
		value = -value
	case TOKEN_OPEN_PAREN:
		value, err = p.bitwise()
		if err != nil {
			return
		}
		_, err = p.expect(TOKEN_CLOSE_PAREN, ErrParenMissing)
	case TOKEN_WORD:
		err = p.errorAt(tok, ErrNotImplemented)
	default:
		err = p.errorAt(tok, ErrExpression)
	}

	return
}
