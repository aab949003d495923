package ingest

// Consumer receives the accepted, tokenized lines of one resource and turns
// them into a result of type R.
//
// The Driver calls Initialize once, then ProcessLine once per accepted line in
// file order, then DoneProcessing once. DoneProcessing is skipped when the run
// fails. Consumer state belongs to the implementation; the Driver never looks
// at it.
type Consumer[R any] interface {
	// Initialize prepares consumer state. It has no error path: a panic here
	// is a programming error and is not recovered.
	Initialize()

	// ProcessLine handles the comma-separated tokens of one accepted line.
	// A non-nil error rejects the line as malformed and ends the run.
	ProcessLine(tokens []string) error

	// DoneProcessing returns the result after the last accepted line.
	DoneProcessing() R
}
