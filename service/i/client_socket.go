package i

import "github.com/google/uuid"

// ClientSocket is the part of the UDP socket manager the session manager
// pushes game records through.
type ClientSocket interface {
	// BroadcastToClients sends one record to every listed, authenticated client.
	BroadcastToClients(clientIDs []uuid.UUID, recordType byte, payload []byte)

	// GetPublicKey returns the key clients use for the socket handshake.
	GetPublicKey() []byte

	// GetAddr returns the socket's listen address.
	GetAddr() string
}
