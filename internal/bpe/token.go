package bpe

// Token is a single tokenization result: the vocabulary identifier plus the
// byte span of the input it covers. Start/End are byte offsets into the
// original input, End exclusive. Immutable once produced.
type Token struct {
	ID    uint32
	Start int
	End   int
}
