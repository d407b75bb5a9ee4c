// Package codec serializes query descriptors for hand-off to an executor.
//
// Descriptors are written as a tagged envelope in JSON or MessagePack.
// Every node carries a "type" of scalar, logical, relation or json, and every
// literal carries its value type, so a decoded descriptor holds the same
// normalized values the parser produced:
//
//	b, err := codec.Marshal(d, codec.Msgpack)
//	...
//	d, err = codec.Unmarshal(b, codec.Msgpack)
package codec
