// Package pbutil holds the tiny bits shared by every hand-maintained
// gen/go-style package under pb/.
package pbutil

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Unimplemented mirrors the error protoc-gen-go-grpc's Unimplemented*
// embeds return for a method the concrete server hasn't overridden.
func Unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}
