package tabsync

// Transport carries raw envelope bytes between sessions that share a client
// identity. Implementations must deliver to every subscriber, including the
// one that published; the Broadcaster's timestamp de-dup handles echoes.
type Transport interface {
	Publish(channel string, data []byte) error
	Subscribe(channel string, handler func(data []byte)) (func(), error)
	Close() error
}
