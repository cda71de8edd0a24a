// Package codec provides reusable shapekit Extensions for values whose raw
// form is a string: RFC 3339 timestamps, UUIDs and embedded JSON documents.
// Register one for a shapekit.Custom description:
//
//	created := shapekit.Custom("Timestamp")
//	cfg := shapekit.New(shapekit.Extend(created, codec.TimeRFC3339()))
package codec
