package ports

// Transport opens named connections and yields raw byte chunks. The core
// assumes 8 data bits, 1 stop bit, no parity; adapters own the details.
type Transport interface {
	Open(name string, baudRate int) (Conn, error)
}

// Conn is one open connection. Read blocks until data arrives or the
// connection fails; a failed read is fatal to the owning acquisition loop.
type Conn interface {
	Read(p []byte) (int, error)
	Close() error
}
