// SPDX-License-Identifier: Unlicense OR MIT

package bitfont

import "errors"

// ErrResource indicates a malformed font descriptor, a missing page file,
// or a duplicate page id out of sequence. It is raised by Load only, and is
// fatal to the font under construction, not to the process (spec §7).
var ErrResource = errors.New("bitfont: resource error")

// ErrInvalidArgument indicates a caller-supplied argument violated a
// documented precondition, such as a nil reader.
var ErrInvalidArgument = errors.New("bitfont: invalid argument")

// ErrDisposed indicates an operation on a font past Dispose.
var ErrDisposed = errors.New("bitfont: font is disposed")
