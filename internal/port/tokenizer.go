package port

// Tokenizer estimates token counts for chunk budgeting and router
// token-threshold decisions. Lexical tokenization for search lives in
// the store's generated index, not here.
type Tokenizer interface {
	CountTokens(text string) int
}
