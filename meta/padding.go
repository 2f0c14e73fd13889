package meta

import (
	"github.com/pkg/errors"
)

// ErrInvalidPadding is returned when a Padding metadata block contains
// anything but zero-padding.
var ErrInvalidPadding = errors.New("meta.Block.verifyPadding: invalid padding")

// verifyPadding verifies the body of a Padding metadata block. It should
// only contain zero-padding.
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-8.3
func (block *Block) verifyPadding() error {
	for _, b := range block.Data {
		if b != 0 {
			return ErrInvalidPadding
		}
	}
	return nil
}
