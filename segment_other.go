//go:build !unix

package shmarena

import (
	"errors"
	"os"
)

var errUnsupportedPlatform = errors.New("shmarena: shared-memory segments are only supported on unix platforms")

func openSegment(name string, oflag OpenFlag, mode os.FileMode) (*segment, *heap, error) {
	return nil, nil, errUnsupportedPlatform
}

func (s *segment) truncate(size uintptr) error { return errUnsupportedPlatform }
func (s *segment) close() error { return errUnsupportedPlatform }
func (s *segment) unlink() error { return errUnsupportedPlatform }
