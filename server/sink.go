package server

// Sink is the byte-writing half of a connection: a TCP socket or an
// open recording file. Connection never inspects packet contents; it
// only assembles, collates, and writes through a Sink under lock *S*
// (spec.md §4.8, §5).
type Sink interface {
	Write(b []byte) (int, error)
	Close() error
}
