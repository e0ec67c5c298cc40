package core

// Character codes the literal protector branches on
const (
	CharDQ    = '"'
	CharSQ    = '\''
	CharSLASH = '/'
	CharLT    = '<'
	CharEQ    = '='
	CharGT    = '>'
)

// IsAsciiLetter checks if a byte is an ASCII letter
func IsAsciiLetter(code byte) bool {
	return (code >= 'a' && code <= 'z') || (code >= 'A' && code <= 'Z')
}

// IsQuote checks if a byte opens or closes a quoted attribute value
func IsQuote(code byte) bool {
	return code == CharSQ || code == CharDQ
}
